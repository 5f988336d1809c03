package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/doc-podcast/internal/config"
	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/pipeline"
	"github.com/jonathan/doc-podcast/internal/verification"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full document-to-podcast pipeline end-to-end",
	Long: `Orchestrates the entire process: section extraction -> episode planning -> dialogue ->
claim extraction -> claim verification -> coverage analysis -> report -> output files.

Sections are read from the config file (--config, YAML or JSON). Command-line flags override
config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runPDF         string
	runTitle       string
	runOutputDir   string
	runProvider    string
	runAPIKey      string
	runDatabaseURL string
	runBatchSize   int
	runMinWords    int
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config file (.yaml, .yml or .json)")

	runCommand.Flags().StringVar(&runPDF, "pdf", "", "Path to the source PDF (overrides document.path)")
	runCommand.Flags().StringVar(&runTitle, "title", "", "Document title (defaults to PDF metadata, then file name)")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Output directory for script and report files")
	runCommand.Flags().StringVar(&runProvider, "provider", "", "Model provider: gemini or openai")
	runCommand.Flags().IntVar(&runBatchSize, "batch-size", 0, "Claims per verification call")
	runCommand.Flags().IntVar(&runMinWords, "min-words", 0, "Minimum script length before expansion stops (0 disables expansion)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed summaries of every stage")

	// API key can be passed as a flag, or read from GEMINI_API_KEY / OPENAI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Model API key (optional, defaults to the provider's env var)")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	if err := runCommand.MarkFlagRequired("config"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as required: %v", err))
	}

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file
	loadedCfg, err := config.LoadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := *loadedCfg

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("pdf") {
		cfg.Document.Path = runPDF
	}
	if cmd.Flags().Changed("title") {
		cfg.Document.Title = runTitle
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("provider") {
		cfg.LLM.Provider = runProvider
	}
	if cmd.Flags().Changed("api-key") {
		cfg.LLM.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.Verification.BatchSize = runBatchSize
	}
	if cmd.Flags().Changed("min-words") {
		cfg.Generation.MinWords = &runMinWords
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults and environment for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.ApplyEnv()

	// Step 4: Validate
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		envVar := config.EnvGeminiAPIKey
		if llm.Provider(cfg.LLM.Provider) == llm.ProviderOpenAI {
			envVar = config.EnvOpenAIAPIKey
		}
		return fmt.Errorf("%s environment variable or --api-key flag is required", envVar)
	}

	if cfg.Verbose {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded config from: %s\n", runConfigPath)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Document: %s (%d sections)\n", cfg.Document.Path, len(cfg.Sections))
	}

	opts := pipeline.RunOptions{
		DocumentPath:          cfg.Document.Path,
		DocumentTitle:         cfg.Document.Title,
		Sections:              cfg.Sections,
		OutputDir:             cfg.OutputDir,
		LLMConfig:             cfg.ModelConfig(),
		APIKey:                cfg.LLM.APIKey,
		RequestsPerSecond:     cfg.LLM.RequestsPerSecond,
		Burst:                 cfg.LLM.Burst,
		ExtractionConcurrency: cfg.Extraction.Concurrency,
		Dialogue:              cfg.Generation.DialogueOptions(),
		Verify:                verification.VerifyOptions{
			BatchSize:   cfg.Verification.BatchSize,
			Concurrency: cfg.Verification.Concurrency,
		},
		DatabaseURL: cfg.DatabaseURL,
		Verbose:     cfg.Verbose,
		Out:         cmd.OutOrStdout(),
	}

	result, err := pipeline.RunPipeline(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if result.RunID != uuid.Nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", result.RunID)
	}
	return nil
}

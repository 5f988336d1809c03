// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/doc-podcast/internal/extraction"
	"github.com/jonathan/doc-podcast/internal/generation"
	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/verification"
)

// Environment variables consulted when a value is not configured
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvDatabaseURL  = "DATABASE_URL"
)

// DefaultOutputDir is where outputs are written when no directory is configured
const DefaultOutputDir = "output"

// Config represents the run configuration loaded from a YAML or JSON file.
// Missing values use defaults or must be provided via CLI flags.
type Config struct {
	Document DocumentConfig           `json:"document" yaml:"document"`
	Sections []extraction.SectionSpec `json:"sections" yaml:"sections" validate:"required,min=1,dive"`

	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"` // Directory for script and report files

	LLM          LLMConfig          `json:"llm" yaml:"llm"`
	Generation   GenerationConfig   `json:"generation" yaml:"generation"`
	Verification VerificationConfig `json:"verification" yaml:"verification"`
	Extraction   ExtractionConfig   `json:"extraction" yaml:"extraction"`

	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL for the artifact store
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed summaries
}

// DocumentConfig identifies the source PDF
type DocumentConfig struct {
	Path  string `json:"path" yaml:"path" validate:"required"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"` // Defaults to the PDF's metadata title, then its file name
}

// LLMConfig selects the model provider and models
type LLMConfig struct {
	Provider          string       `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	APIKey            string       `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL           string       `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Models            ModelsConfig `json:"models,omitempty" yaml:"models,omitempty"`
	TimeoutSeconds    int          `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	RequestsPerSecond float64      `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gte=0"`
	Burst             int          `json:"burst,omitempty" yaml:"burst,omitempty" validate:"gte=0"`
}

// ModelsConfig overrides the model name per tier
type ModelsConfig struct {
	Lite     string `json:"lite,omitempty" yaml:"lite,omitempty"`
	Standard string `json:"standard,omitempty" yaml:"standard,omitempty"`
	Advanced string `json:"advanced,omitempty" yaml:"advanced,omitempty"`
}

// GenerationConfig controls dialogue length.
// Nil fields take the defaults; an explicit min_words of 0 disables expansion.
type GenerationConfig struct {
	MinWords      *int `json:"min_words,omitempty" yaml:"min_words,omitempty" validate:"omitempty,gte=0"`
	MaxExpansions *int `json:"max_expansions,omitempty" yaml:"max_expansions,omitempty" validate:"omitempty,gte=0"`
}

// DialogueOptions converts the settings for the dialogue generator
func (g GenerationConfig) DialogueOptions() generation.DialogueOptions {
	opts := generation.DefaultDialogueOptions()
	if g.MinWords != nil {
		opts.MinWords = *g.MinWords
	}
	if g.MaxExpansions != nil {
		opts.MaxExpansions = *g.MaxExpansions
	}
	return opts
}

func intPtr(v int) *int { return &v }

// VerificationConfig controls claim batching
type VerificationConfig struct {
	BatchSize   int `json:"batch_size,omitempty" yaml:"batch_size,omitempty" validate:"gte=0"`
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0"`
}

// ExtractionConfig controls section fan-out
type ExtractionConfig struct {
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0"`
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	// Relative document paths are relative to the config file
	if cfg.Document.Path != "" && !filepath.IsAbs(cfg.Document.Path) {
		cfg.Document.Path = filepath.Join(filepath.Dir(path), cfg.Document.Path)
	}

	return &cfg, nil
}

// Defaults returns the values used for anything left unset
func Defaults() Config {
	return Config{
		OutputDir: DefaultOutputDir,
		LLM: LLMConfig{
			Provider:       string(llm.ProviderGemini),
			TimeoutSeconds: int(llm.DefaultTimeout / time.Second),
		},
		Generation: GenerationConfig{
			MinWords:      intPtr(generation.DefaultMinWords),
			MaxExpansions: intPtr(generation.DefaultMaxExpansions),
		},
		Verification: VerificationConfig{
			BatchSize:   verification.DefaultBatchSize,
			Concurrency: verification.DefaultConcurrency,
		},
		Extraction: ExtractionConfig{
			Concurrency: extraction.DefaultConcurrency,
		},
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c
	result.Sections = append([]extraction.SectionSpec(nil), c.Sections...)

	// String fields: use default if empty
	if result.Document.Path == "" {
		result.Document.Path = defaults.Document.Path
	}
	if result.Document.Title == "" {
		result.Document.Title = defaults.Document.Title
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.BaseURL == "" {
		result.LLM.BaseURL = defaults.LLM.BaseURL
	}
	if result.LLM.Models.Lite == "" {
		result.LLM.Models.Lite = defaults.LLM.Models.Lite
	}
	if result.LLM.Models.Standard == "" {
		result.LLM.Models.Standard = defaults.LLM.Models.Standard
	}
	if result.LLM.Models.Advanced == "" {
		result.LLM.Models.Advanced = defaults.LLM.Models.Advanced
	}

	// Numeric fields: use default if zero
	if result.LLM.TimeoutSeconds == 0 {
		result.LLM.TimeoutSeconds = defaults.LLM.TimeoutSeconds
	}
	if result.LLM.RequestsPerSecond == 0 {
		result.LLM.RequestsPerSecond = defaults.LLM.RequestsPerSecond
	}
	if result.LLM.Burst == 0 {
		result.LLM.Burst = defaults.LLM.Burst
	}
	if result.Generation.MinWords == nil && defaults.Generation.MinWords != nil {
		result.Generation.MinWords = intPtr(*defaults.Generation.MinWords)
	}
	if result.Generation.MaxExpansions == nil && defaults.Generation.MaxExpansions != nil {
		result.Generation.MaxExpansions = intPtr(*defaults.Generation.MaxExpansions)
	}
	if result.Verification.BatchSize == 0 {
		result.Verification.BatchSize = defaults.Verification.BatchSize
	}
	if result.Verification.Concurrency == 0 {
		result.Verification.Concurrency = defaults.Verification.Concurrency
	}
	if result.Extraction.Concurrency == 0 {
		result.Extraction.Concurrency = defaults.Extraction.Concurrency
	}

	// Sections: a config without any takes the default list
	if len(result.Sections) == 0 {
		result.Sections = append([]extraction.SectionSpec(nil), defaults.Sections...)
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills the API key and database URL from the environment when unset
func (c *Config) ApplyEnv() {
	if c.LLM.APIKey == "" {
		switch llm.Provider(c.LLM.Provider) {
		case llm.ProviderOpenAI:
			c.LLM.APIKey = os.Getenv(EnvOpenAIAPIKey)
		default:
			c.LLM.APIKey = os.Getenv(EnvGeminiAPIKey)
		}
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
}

// Validate checks that the configuration has valid values and that the
// document exists. Errors are *ConfigurationError.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return &ConfigurationError{Message: err.Error()}
	}

	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		if seen[s.Name] {
			return &ConfigurationError{
				Field:   fmt.Sprintf("sections[%d].name", i),
				Message: fmt.Sprintf("duplicates section %q", s.Name),
			}
		}
		seen[s.Name] = true
	}

	if _, err := os.Stat(c.Document.Path); os.IsNotExist(err) {
		return &ConfigurationError{Field: "document.path", Message: fmt.Sprintf("file not found: %s", c.Document.Path)}
	}

	return nil
}

// fieldError converts a validator failure into a ConfigurationError with a dotted json path
func fieldError(fe validator.FieldError) *ConfigurationError {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")

	var message string
	switch fe.Tag() {
	case "required":
		message = "is required"
	case "min":
		message = fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gt":
		message = fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		message = fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		message = fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		message = "must be a valid URL"
	default:
		message = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &ConfigurationError{Field: field, Message: message}
}

// ModelConfig converts the LLM section into an llm.Config
func (c *Config) ModelConfig() *llm.Config {
	cfg := llm.DefaultConfigFor(llm.Provider(c.LLM.Provider))
	overrides := map[llm.ModelTier]string{
		llm.TierLite:     c.LLM.Models.Lite,
		llm.TierStandard: c.LLM.Models.Standard,
		llm.TierAdvanced: c.LLM.Models.Advanced,
	}
	for tier, model := range overrides {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	cfg.BaseURL = c.LLM.BaseURL
	if c.LLM.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.LLM.TimeoutSeconds) * time.Second
	}
	return cfg
}

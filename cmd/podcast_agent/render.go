package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-podcast/internal/rendering"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a stored podcast script JSON as Markdown",
	Long:  "Reads a podcast_script.json produced by a run and renders it with the built-in Markdown template or a custom text/template.",
	RunE:  runRender,
}

var (
	renderScript   string
	renderTemplate string
	renderOutput   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderScript, "script", "s", "", "Path to podcast script JSON file (required)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Path to a custom Markdown template (optional)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output Markdown file (defaults to stdout)")

	if err := renderCmd.MarkFlagRequired("script"); err != nil {
		panic(fmt.Sprintf("failed to mark script flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	script, err := rendering.ReadScript(renderScript)
	if err != nil {
		return err
	}

	var markdown string
	if renderTemplate != "" {
		markdown, err = rendering.RenderScriptWithTemplate(script, renderTemplate)
	} else {
		markdown, err = rendering.RenderScript(script)
	}
	if err != nil {
		return fmt.Errorf("failed to render script: %w", err)
	}

	if renderOutput == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), markdown)
		return nil
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(renderOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(renderOutput, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d lines (~%d words) to %s\n", len(script.Dialogue), script.WordCount, renderOutput)
	return nil
}

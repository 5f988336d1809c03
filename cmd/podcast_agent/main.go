// Package main provides the podcast_agent CLI, which turns a PDF into a two-host podcast
// script and a verification report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "podcast_agent",
	Short: "Document-to-podcast generator with claim verification",
	Long: `podcast_agent extracts key points from configured sections of a PDF, writes a two-host
podcast script about them, then checks every factual claim in the script against the source
and reports hallucinations and per-section coverage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/doc-podcast/internal/config"
	"github.com/jonathan/doc-podcast/internal/db"
	"github.com/jonathan/doc-podcast/internal/observability"
)

var showReportCmd = &cobra.Command{
	Use:   "show-report",
	Short: "Print a stored verification report from the artifact store",
	RunE:  runShowReport,
}

var listRunsCmd = &cobra.Command{
	Use:   "list-runs",
	Short: "List recent pipeline runs in the artifact store",
	RunE:  runListRuns,
}

var (
	showReportRunID string
	storeDBURL      string
	listRunsLimit   int
)

func init() {
	showReportCmd.Flags().StringVar(&showReportRunID, "run-id", "", "Run ID (required)")
	showReportCmd.Flags().StringVar(&storeDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	if err := showReportCmd.MarkFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	listRunsCmd.Flags().StringVar(&storeDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	listRunsCmd.Flags().IntVar(&listRunsLimit, "limit", 20, "Maximum runs to list")

	rootCmd.AddCommand(showReportCmd)
	rootCmd.AddCommand(listRunsCmd)
}

// openStore connects using --db-url or DATABASE_URL
func openStore(cmd *cobra.Command) (*db.DB, error) {
	databaseURL := storeDBURL
	if databaseURL == "" {
		databaseURL = os.Getenv(config.EnvDatabaseURL)
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("%s environment variable or --db-url flag is required", config.EnvDatabaseURL)
	}
	return db.Connect(cmd.Context(), databaseURL)
}

func runShowReport(cmd *cobra.Command, _ []string) error {
	runID, err := uuid.Parse(showReportRunID)
	if err != nil {
		return fmt.Errorf("invalid run id format: %w", err)
	}

	database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	report, err := database.GetReportByRunID(ctx, runID)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("run %s has no verification report (status: %s)", runID, run.Status)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run %s: %s (%s)\n", run.ID, run.DocumentTitle, run.Status)
	printer := observability.NewPrinter(out)
	printer.PrintReport(report)
	printer.PrintWarnings(report.DataQuality)
	return nil
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(cmd.Context(), listRunsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs found")
		return nil
	}
	for _, run := range runs {
		_, _ = fmt.Fprintf(out, "%s  %-9s  %s  %s\n",
			run.ID, run.Status, run.CreatedAt.Format("2006-01-02 15:04"), run.DocumentTitle)
	}
	return nil
}

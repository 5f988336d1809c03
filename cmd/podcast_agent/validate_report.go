package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-podcast/internal/rendering"
	"github.com/jonathan/doc-podcast/internal/schemas"
)

var validateReportCmd = &cobra.Command{
	Use:   "validate-report <file>",
	Short: "Validate a verification report against its JSON schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateReport,
}

func init() {
	rootCmd.AddCommand(validateReportCmd)
}

func runValidateReport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("report file not found: %s", path)
	}

	report, err := rendering.ReadReport(path)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), validationErr.Error())
			return fmt.Errorf("report is invalid: %d schema violation(s)", len(validationErr.Errors))
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %d claims, %d hallucinations, %.2f%% coverage\n",
		report.TotalClaims, report.Hallucinations, report.CoveragePercentage)
	return nil
}

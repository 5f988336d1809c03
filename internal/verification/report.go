package verification

import (
	"fmt"
	"math"

	"github.com/jonathan/doc-podcast/internal/types"
)

// ReportInput is everything the report is assembled from
type ReportInput struct {
	DocumentTitle   string
	Script          *types.PodcastScript // optional, for title and word count
	SectionCount    int                  // sections in the document; coverage must be non-empty when > 0
	Claims          []types.ClaimVerification
	Coverage        []types.CoverageItem
	DegradedBatches []types.DegradedBatch
	DataQuality     []types.DataQualityWarning
}

// AssembleReport aggregates claim and coverage verdicts. It is a pure function:
// the same input always yields an identical report.
func AssembleReport(input ReportInput) (*types.VerificationReport, error) {
	if input.SectionCount > 0 && len(input.Coverage) == 0 {
		return nil, &StageError{
			Stage: StageReport,
			Cause: fmt.Errorf("document has %d sections but coverage is empty", input.SectionCount),
		}
	}

	report := &types.VerificationReport{
		DocumentTitle:   input.DocumentTitle,
		TotalClaims:     len(input.Claims),
		Claims:          make([]types.ClaimVerification, len(input.Claims)),
		Coverage:        make([]types.CoverageItem, len(input.Coverage)),
		DegradedBatches: copyDegraded(input.DegradedBatches),
		DataQuality:     append([]types.DataQualityWarning(nil), input.DataQuality...),
	}
	copy(report.Claims, input.Claims)
	for i, item := range input.Coverage {
		report.Coverage[i] = types.CoverageItem{
			Section: item.Section,
			Status:  item.Status,
			Covered: append([]string{}, item.Covered...),
			Omitted: append([]string{}, item.Omitted...),
		}
	}

	if input.Script != nil {
		report.ScriptTitle = input.Script.Title
		report.ScriptWordCount = types.CountWords(input.Script.Dialogue)
	}

	for _, c := range input.Claims {
		switch c.Status {
		case types.StatusSupported:
			report.Supported++
		case types.StatusPartiallySupported:
			report.PartiallySupported++
		case types.StatusNotFound:
			report.Hallucinations++
		}
	}

	if report.TotalClaims > 0 {
		rate := (float64(report.Supported) + 0.5*float64(report.PartiallySupported)) / float64(report.TotalClaims) * 100
		report.SupportRate = round2(rate)
	}
	report.CoveragePercentage = CoveragePercentage(input.Coverage)
	report.Degraded = len(report.DegradedBatches) > 0

	return report, nil
}

// CoveragePercentage is covered key points over all key points across every
// section, as a percentage rounded to two decimals. Zero key points yields 0.
func CoveragePercentage(items []types.CoverageItem) float64 {
	covered, total := 0, 0
	for _, item := range items {
		covered += len(item.Covered)
		total += len(item.Covered) + len(item.Omitted)
	}
	if total == 0 {
		return 0
	}
	return round2(float64(covered) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func copyDegraded(batches []types.DegradedBatch) []types.DegradedBatch {
	if len(batches) == 0 {
		return nil
	}
	out := make([]types.DegradedBatch, len(batches))
	for i, b := range batches {
		out[i] = b
		out[i].UnresolvedClaims = append([]int{}, b.UnresolvedClaims...)
	}
	return out
}

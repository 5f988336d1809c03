// Package extraction turns page-scoped source text into key points with provenance.
package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// MaxKeyPoints is the most key points kept per section
const MaxKeyPoints = 7

// Stage is the stage name carried in warnings and model-call errors
const Stage = "extract_section"

// SectionResult is an extracted section plus the recoverable problems found while building it
type SectionResult struct {
	Section  types.SectionContent
	Warnings []types.DataQualityWarning
}

type keyPointsResponse struct {
	KeyPoints []types.KeyPoint `json:"key_points"`
}

// ExtractSection asks the model for the key points of one section and keeps only
// those whose provenance is plausible. Whitespace-only text is a thin section and
// costs no model call.
func ExtractSection(ctx context.Context, caller llm.Caller, name string, pages []int, rawText string) (*SectionResult, error) {
	result := &SectionResult{
		Section: types.SectionContent{
			Name:      name,
			Pages:     pages,
			RawText:   rawText,
			KeyPoints: []types.KeyPoint{},
		},
	}

	if strings.TrimSpace(rawText) == "" {
		result.warn(name, "thin section: no text on the configured pages")
		return result, nil
	}

	var resp keyPointsResponse
	err := caller.Call(ctx, llm.CallRequest{
		Stage:      Stage,
		PromptFile: prompts.FileExtraction,
		PromptKey:  prompts.KeyExtractKeyPoints,
		Variables: map[string]string{
			"SectionName": name,
			"Pages":       result.Section.PagesString(),
			"RawText":     rawText,
		},
		Schema: schemas.KeyPoints,
		Tier:   llm.TierStandard,
	}, &resp)
	if err != nil {
		return nil, &ExtractionError{Section: name, Cause: err}
	}

	result.Section.KeyPoints = result.filterKeyPoints(resp.KeyPoints)
	if len(result.Section.KeyPoints) == 0 {
		result.warn(name, "thin section: no usable key points")
	}
	return result, nil
}

// filterKeyPoints drops points without usable provenance and enforces MaxKeyPoints
func (r *SectionResult) filterKeyPoints(points []types.KeyPoint) []types.KeyPoint {
	section := &r.Section
	normalizedRaw := types.NormalizeText(section.RawText)

	kept := make([]types.KeyPoint, 0, len(points))
	for i, kp := range points {
		kp.Point = strings.TrimSpace(kp.Point)
		kp.SourceQuote = strings.TrimSpace(kp.SourceQuote)

		switch {
		case kp.SourceQuote == "":
			r.warn(section.Name, fmt.Sprintf("dropped key point %d: empty source quote", i+1))
			continue
		case !section.HasPage(kp.Page):
			r.warn(section.Name, fmt.Sprintf("dropped key point %d: page %d is not in pages [%s]", i+1, kp.Page, section.PagesString()))
			continue
		}

		if !strings.Contains(normalizedRaw, types.NormalizeText(kp.SourceQuote)) {
			r.warn(section.Name, fmt.Sprintf("key point %d: source quote not found verbatim in section text", i+1))
		}
		kept = append(kept, kp)
	}

	if len(kept) > MaxKeyPoints {
		r.warn(section.Name, fmt.Sprintf("truncated %d key points to %d", len(kept), MaxKeyPoints))
		kept = kept[:MaxKeyPoints]
	}
	return kept
}

func (r *SectionResult) warn(subject, message string) {
	r.Warnings = append(r.Warnings, types.DataQualityWarning{
		Stage:   Stage,
		Subject: subject,
		Message: message,
	})
}

package verification

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// CoverageResult holds one coverage item per document section, in document order
type CoverageResult struct {
	Items    []types.CoverageItem
	Warnings []types.DataQualityWarning
}

type coverageResponse struct {
	Sections []struct {
		Section string               `json:"section"`
		Status  types.CoverageStatus `json:"status"`
		Covered []string             `json:"covered"`
	} `json:"sections"`
}

// AnalyzeCoverage classifies, per section, how much of its key-point set the
// dialogue reflects. All sections with key points are judged in a single call;
// sections without key points are OMITTED without asking the model.
// Covered and Omitted always partition the section's key points.
func AnalyzeCoverage(ctx context.Context, caller llm.Caller, script *types.PodcastScript, doc *types.ExtractedDocument) (*CoverageResult, error) {
	refs := doc.IndexedKeyPoints()
	bySection := make(map[string][]types.KeyPointRef)
	for _, ref := range refs {
		bySection[ref.Section] = append(bySection[ref.Section], ref)
	}

	var resp coverageResponse
	if len(refs) > 0 {
		err := caller.Call(ctx, llm.CallRequest{
			Stage:      StageCoverage,
			PromptFile: prompts.FileVerification,
			PromptKey:  prompts.KeyAnalyzeCoverage,
			Variables: map[string]string{
				"Sections":   formatCoverageSections(doc, bySection),
				"Transcript": FormatTranscript(script),
			},
			Schema: schemas.Coverage,
			Tier:   llm.TierLite,
		}, &resp)
		if err != nil {
			return nil, &StageError{Stage: StageCoverage, Cause: err}
		}
	}

	result := &CoverageResult{Items: make([]types.CoverageItem, 0, len(doc.Sections))}

	// index model verdicts by section name; first verdict for a name wins
	type verdict struct {
		status  types.CoverageStatus
		covered []string
	}
	verdicts := make(map[string]verdict)
	for _, s := range resp.Sections {
		name := matchSectionName(doc, s.Section)
		if name == "" {
			result.warn(s.Section, "coverage returned for unknown section")
			continue
		}
		if _, dup := verdicts[name]; dup {
			result.warn(name, "duplicate coverage verdict ignored")
			continue
		}
		verdicts[name] = verdict{status: s.Status, covered: s.Covered}
	}

	for _, section := range doc.Sections {
		sectionRefs := bySection[section.Name]
		item := types.CoverageItem{
			Section: section.Name,
			Status:  types.CoverageOmitted,
			Covered: []string{},
			Omitted: []string{},
		}

		if len(sectionRefs) == 0 {
			result.Items = append(result.Items, item)
			continue
		}

		v, ok := verdicts[section.Name]
		if !ok {
			result.warn(section.Name, "section missing from coverage response; treated as OMITTED")
			for _, ref := range sectionRefs {
				item.Omitted = append(item.Omitted, ref.KeyPoint.Point)
			}
			result.Items = append(result.Items, item)
			continue
		}

		covered := result.resolveCovered(section.Name, sectionRefs, v.covered)
		for _, ref := range sectionRefs {
			if covered[ref.ID] {
				item.Covered = append(item.Covered, ref.KeyPoint.Point)
			} else {
				item.Omitted = append(item.Omitted, ref.KeyPoint.Point)
			}
		}
		item.Status = coverageStatus(len(item.Covered), len(sectionRefs), v.status)
		result.Items = append(result.Items, item)
	}

	return result, nil
}

// coverageStatus reconciles the model's verdict with the resolved counts
func coverageStatus(covered, total int, model types.CoverageStatus) types.CoverageStatus {
	switch {
	case total == 0, covered == 0:
		return types.CoverageOmitted
	case covered == total:
		return types.CoverageFull
	case model == types.CoverageFull:
		return types.CoverageFull
	default:
		return types.CoveragePartial
	}
}

// resolveCovered maps model references onto this section's key point IDs
func (r *CoverageResult) resolveCovered(section string, refs []types.KeyPointRef, references []string) map[string]bool {
	byID := make(map[string]string, len(refs))
	byText := make(map[string]string, len(refs))
	for _, ref := range refs {
		byID[strings.ToUpper(ref.ID)] = ref.ID
		byText[types.NormalizeText(ref.KeyPoint.Point)] = ref.ID
	}

	covered := make(map[string]bool)
	for _, reference := range references {
		reference = strings.TrimSpace(reference)
		id, ok := byID[strings.ToUpper(reference)]
		if !ok {
			id, ok = byText[types.NormalizeText(reference)]
		}
		if !ok {
			r.warn(section, fmt.Sprintf("ignored unresolvable covered reference %q", reference))
			continue
		}
		covered[id] = true
	}
	return covered
}

func (r *CoverageResult) warn(subject, message string) {
	r.Warnings = append(r.Warnings, types.DataQualityWarning{
		Stage:   StageCoverage,
		Subject: subject,
		Message: message,
	})
}

// matchSectionName finds the document section a returned name refers to
func matchSectionName(doc *types.ExtractedDocument, name string) string {
	if s := doc.Section(name); s != nil {
		return s.Name
	}
	normalized := types.NormalizeText(name)
	for _, s := range doc.Sections {
		if types.NormalizeText(s.Name) == normalized {
			return s.Name
		}
	}
	return ""
}

func formatCoverageSections(doc *types.ExtractedDocument, bySection map[string][]types.KeyPointRef) string {
	var sb strings.Builder
	for _, section := range doc.Sections {
		refs := bySection[section.Name]
		if len(refs) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n", section.Name))
		for _, ref := range refs {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", ref.ID, ref.KeyPoint.Point))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Package generation plans a two-host episode from extracted key points and writes its dialogue.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// Stage names
const (
	StagePlan   = "plan_episode"
	StageScript = "generate_dialogue"
	StageExpand = "expand_dialogue"
)

// PlanResult is an episode plan whose key point references all resolve
type PlanResult struct {
	Plan     types.EpisodePlan
	Warnings []types.DataQualityWarning
}

// PlanEpisode asks the model for an episode structure over the given key points.
// References the model makes to key points are resolved by ID or by exact
// (normalized) text; anything else is dropped with a warning.
func PlanEpisode(ctx context.Context, caller llm.Caller, title string, refs []types.KeyPointRef) (*PlanResult, error) {
	var plan types.EpisodePlan
	err := caller.Call(ctx, llm.CallRequest{
		Stage:      StagePlan,
		PromptFile: prompts.FileGeneration,
		PromptKey:  prompts.KeyPlanEpisode,
		Variables: map[string]string{
			"DocumentTitle": title,
			"KeyPoints":     formatKeyPointList(refs),
		},
		Schema: schemas.EpisodePlan,
		Tier:   llm.TierAdvanced,
	}, &plan)
	if err != nil {
		return nil, &GenerationError{Stage: StagePlan, Cause: err}
	}

	result := &PlanResult{}
	resolver := newRefResolver(refs)
	for i := range plan.Segments {
		segment := &plan.Segments[i]
		resolved := make([]string, 0, len(segment.KeyPointsToCover))
		seen := make(map[string]bool)
		for _, ref := range segment.KeyPointsToCover {
			id, ok := resolver.resolve(ref)
			if !ok {
				result.Warnings = append(result.Warnings, types.DataQualityWarning{
					Stage:   StagePlan,
					Subject: segment.Title,
					Message: fmt.Sprintf("dropped unknown key point reference %q", ref),
				})
				continue
			}
			if !seen[id] {
				seen[id] = true
				resolved = append(resolved, id)
			}
		}
		segment.KeyPointsToCover = resolved
	}

	result.Plan = plan
	return result, nil
}

// refResolver maps model-supplied key point references to stable IDs
type refResolver struct {
	byID   map[string]string
	byText map[string]string
}

func newRefResolver(refs []types.KeyPointRef) *refResolver {
	r := &refResolver{
		byID:   make(map[string]string, len(refs)),
		byText: make(map[string]string, len(refs)),
	}
	for _, ref := range refs {
		r.byID[strings.ToUpper(ref.ID)] = ref.ID
		text := types.NormalizeText(ref.KeyPoint.Point)
		if _, dup := r.byText[text]; !dup {
			r.byText[text] = ref.ID
		}
	}
	return r
}

func (r *refResolver) resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if id, ok := r.byID[strings.ToUpper(ref)]; ok {
		return id, true
	}
	id, ok := r.byText[types.NormalizeText(ref)]
	return id, ok
}

// formatKeyPointList renders one key point per line with its ID
func formatKeyPointList(refs []types.KeyPointRef) string {
	var sb strings.Builder
	for _, ref := range refs {
		sb.WriteString(fmt.Sprintf("- %s [%s] (%s) %s\n", ref.ID, ref.Section, ref.KeyPoint.Category, ref.KeyPoint.Point))
	}
	return strings.TrimRight(sb.String(), "\n")
}

package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// Dialogue defaults
const (
	DefaultMinWords      = 1800
	DefaultMaxExpansions = 2
	quoteLimit           = 200
)

// DialogueOptions controls script length enforcement.
// MinWords of zero disables expansion.
type DialogueOptions struct {
	MinWords      int
	MaxExpansions int
	// OnExpand is called before each expansion attempt
	OnExpand func(attempt, words int)
}

// DefaultDialogueOptions returns the standard length targets
func DefaultDialogueOptions() DialogueOptions {
	return DialogueOptions{MinWords: DefaultMinWords, MaxExpansions: DefaultMaxExpansions}
}

// DialogueResult is a generated script plus recoverable problems found while writing it
type DialogueResult struct {
	Script     types.PodcastScript
	Expansions int
	Warnings   []types.DataQualityWarning
}

// GenerateDialogue writes the two-host script for plan, grounding it in the
// document's key points. WordCount is always computed locally.
func GenerateDialogue(ctx context.Context, caller llm.Caller, plan *types.EpisodePlan, doc *types.ExtractedDocument, opts DialogueOptions) (*DialogueResult, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, &GenerationError{Stage: StageScript, Cause: err}
	}
	keyPoints := formatKeyPointsWithSources(doc.IndexedKeyPoints())

	var script types.PodcastScript
	err = caller.Call(ctx, llm.CallRequest{
		Stage:      StageScript,
		PromptFile: prompts.FileGeneration,
		PromptKey:  prompts.KeyGenerateDialogue,
		Variables: map[string]string{
			"Plan":      string(planJSON),
			"KeyPoints": keyPoints,
			"MinWords":  strconv.Itoa(opts.MinWords),
		},
		Schema: schemas.PodcastScript,
		Tier:   llm.TierAdvanced,
	}, &script)
	if err != nil {
		return nil, &GenerationError{Stage: StageScript, Cause: err}
	}
	finalizeScript(&script, plan)

	result := &DialogueResult{}
	for attempt := 1; opts.MinWords > 0 && script.WordCount < opts.MinWords && attempt <= opts.MaxExpansions; attempt++ {
		if opts.OnExpand != nil {
			opts.OnExpand(attempt, script.WordCount)
		}
		expanded, err := expandScript(ctx, caller, &script, keyPoints, opts.MinWords)
		if err != nil {
			return nil, &GenerationError{Stage: StageExpand, Cause: err}
		}
		finalizeScript(expanded, plan)
		result.Expansions++

		if expanded.WordCount <= script.WordCount {
			result.Warnings = append(result.Warnings, types.DataQualityWarning{
				Stage:   StageExpand,
				Subject: fmt.Sprintf("attempt %d", attempt),
				Message: fmt.Sprintf("expansion returned %d words, keeping previous %d", expanded.WordCount, script.WordCount),
			})
			continue
		}
		script = *expanded
	}

	if opts.MinWords > 0 && script.WordCount < opts.MinWords {
		result.Warnings = append(result.Warnings, types.DataQualityWarning{
			Stage:   StageScript,
			Message: fmt.Sprintf("script has %d words, below the %d word target", script.WordCount, opts.MinWords),
		})
	}

	result.Script = script
	return result, nil
}

func expandScript(ctx context.Context, caller llm.Caller, script *types.PodcastScript, keyPoints string, minWords int) (*types.PodcastScript, error) {
	scriptJSON, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return nil, err
	}

	var expanded types.PodcastScript
	err = caller.Call(ctx, llm.CallRequest{
		Stage:      StageExpand,
		PromptFile: prompts.FileGeneration,
		PromptKey:  prompts.KeyExpandDialogue,
		Variables: map[string]string{
			"Script":       string(scriptJSON),
			"KeyPoints":    keyPoints,
			"CurrentWords": strconv.Itoa(script.WordCount),
			"MinWords":     strconv.Itoa(minWords),
		},
		Schema: schemas.PodcastScript,
		Tier:   llm.TierAdvanced,
	}, &expanded)
	if err != nil {
		return nil, err
	}
	return &expanded, nil
}

// finalizeScript fills fields the model may omit and recomputes the word count
func finalizeScript(script *types.PodcastScript, plan *types.EpisodePlan) {
	if strings.TrimSpace(script.Title) == "" {
		script.Title = plan.Title
	}
	if strings.TrimSpace(script.FrictionMoment) == "" {
		script.FrictionMoment = plan.FrictionMoment
	}
	if strings.TrimSpace(script.Takeaway) == "" {
		script.Takeaway = plan.Takeaway
	}
	for i := range script.Dialogue {
		script.Dialogue[i].Text = strings.TrimSpace(script.Dialogue[i].Text)
		script.Dialogue[i].EmotionCue = strings.TrimSpace(script.Dialogue[i].EmotionCue)
	}
	script.RecountWords()
}

// formatKeyPointsWithSources renders key points with truncated supporting quotes
func formatKeyPointsWithSources(refs []types.KeyPointRef) string {
	var sb strings.Builder
	for _, ref := range refs {
		kp := ref.KeyPoint
		sb.WriteString(fmt.Sprintf("- %s [%s] %s\n", ref.ID, ref.Section, kp.Point))
		sb.WriteString(fmt.Sprintf("  Source (page %d): %q\n", kp.Page, llm.Truncate(kp.SourceQuote, quoteLimit)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Package verification extracts factual claims from a generated script, checks them
// against the source document, scores per-section coverage and assembles the report.
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

// Stage names
const (
	StageClaims   = "extract_claims"
	StageVerify   = "verify_claims"
	StageCoverage = "analyze_coverage"
	StageReport   = "assemble_report"
)

// ClaimsResult is the extracted claim list plus dropped-claim warnings
type ClaimsResult struct {
	Claims   []types.Claim
	Warnings []types.DataQualityWarning
}

type claimsResponse struct {
	Claims []struct {
		Claim         string `json:"claim"`
		ScriptContext string `json:"script_context"`
		LineIndex     int    `json:"line_index"`
	} `json:"claims"`
}

// ExtractClaims lists the atomic factual claims made in the script. Each surviving
// claim receives its stable Index here; later stages never renumber claims.
func ExtractClaims(ctx context.Context, caller llm.Caller, script *types.PodcastScript) (*ClaimsResult, error) {
	result := &ClaimsResult{Claims: []types.Claim{}}
	if len(script.Dialogue) == 0 {
		return result, nil
	}

	var resp claimsResponse
	err := caller.Call(ctx, llm.CallRequest{
		Stage:      StageClaims,
		PromptFile: prompts.FileVerification,
		PromptKey:  prompts.KeyExtractClaims,
		Variables: map[string]string{
			"Transcript": FormatTranscript(script),
		},
		Schema: schemas.Claims,
		Tier:   llm.TierStandard,
	}, &resp)
	if err != nil {
		return nil, &StageError{Stage: StageClaims, Cause: err}
	}

	for i, c := range resp.Claims {
		text := strings.TrimSpace(c.Claim)
		if c.LineIndex < 0 || c.LineIndex >= len(script.Dialogue) {
			result.Warnings = append(result.Warnings, types.DataQualityWarning{
				Stage:   StageClaims,
				Subject: fmt.Sprintf("claim %d", i+1),
				Message: fmt.Sprintf("dropped claim with line_index %d outside dialogue of %d lines", c.LineIndex, len(script.Dialogue)),
			})
			continue
		}
		scriptContext := strings.TrimSpace(c.ScriptContext)
		if scriptContext == "" {
			scriptContext = script.Dialogue[c.LineIndex].Text
		}
		result.Claims = append(result.Claims, types.Claim{
			Index:         len(result.Claims),
			Claim:         text,
			ScriptContext: scriptContext,
			LineIndex:     c.LineIndex,
		})
	}
	return result, nil
}

// FormatTranscript renders the dialogue as "[i] Speaker: text" lines
func FormatTranscript(script *types.PodcastScript) string {
	var sb strings.Builder
	for i, line := range script.Dialogue {
		sb.WriteString(fmt.Sprintf("[%d] %s: %s\n", i, line.Speaker, line.Text))
	}
	return strings.TrimRight(sb.String(), "\n")
}

package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// Verification defaults
const (
	DefaultBatchSize   = 15
	DefaultConcurrency = 4
	quoteLimit         = 200
)

// VerifyOptions controls batching
type VerifyOptions struct {
	BatchSize   int
	Concurrency int
	// MaxSourceChars caps each section's raw text in the prompt; 0 sends it in full
	MaxSourceChars int
	// OnBatch is called when a batch completes; it may be called concurrently
	OnBatch func(batch, total int, mismatch *ReconciliationMismatch)
}

// VerifyResult holds one verification per submitted claim, in submission order,
// plus the batches that could not be fully reconciled
type VerifyResult struct {
	Verifications []types.ClaimVerification
	Mismatches    []*ReconciliationMismatch
}

type verificationEntry struct {
	ClaimID     int     `json:"claim_id"`
	Claim       string  `json:"claim"`
	Status      string  `json:"status"`
	SourcePage  *int    `json:"source_page"`
	SourceQuote *string `json:"source_quote"`
	Explanation string  `json:"explanation"`
}

type verificationResponse struct {
	Verifications []verificationEntry `json:"verifications"`
}

type batchResult struct {
	verifications []types.ClaimVerification
	mismatch      *ReconciliationMismatch
}

// VerifyClaims checks every claim against the document in fixed-size batches.
// Batches run concurrently and are merged in submission order. A batch whose
// response is malformed or cannot be reconciled degrades its claims to NOT_FOUND;
// only a failure to reach the model aborts.
func VerifyClaims(ctx context.Context, caller llm.Caller, claims []types.Claim, doc *types.ExtractedDocument, opts VerifyOptions) (*VerifyResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	batches := partition(claims, opts.BatchSize)
	results := make([]batchResult, len(batches))
	sourceMaterial := FormatSourceMaterial(doc, opts.MaxSourceChars)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			verifications, mismatch, err := verifyBatch(gctx, caller, i+1, batch, sourceMaterial)
			if err != nil {
				return err
			}
			results[i] = batchResult{verifications: verifications, mismatch: mismatch}
			if opts.OnBatch != nil {
				opts.OnBatch(i+1, len(batches), mismatch)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &VerifyResult{Verifications: make([]types.ClaimVerification, 0, len(claims))}
	for _, r := range results {
		out.Verifications = append(out.Verifications, r.verifications...)
		if r.mismatch != nil {
			out.Mismatches = append(out.Mismatches, r.mismatch)
		}
	}
	return out, nil
}

func partition(claims []types.Claim, size int) [][]types.Claim {
	var batches [][]types.Claim
	for start := 0; start < len(claims); start += size {
		end := start + size
		if end > len(claims) {
			end = len(claims)
		}
		batches = append(batches, claims[start:end])
	}
	return batches
}

func verifyBatch(ctx context.Context, caller llm.Caller, batch int, claims []types.Claim, sourceMaterial string) ([]types.ClaimVerification, *ReconciliationMismatch, error) {
	claimsJSON, err := formatClaims(claims)
	if err != nil {
		return nil, nil, &StageError{Stage: StageVerify, Cause: err}
	}

	var resp verificationResponse
	err = caller.Call(ctx, llm.CallRequest{
		Stage:      StageVerify,
		PromptFile: prompts.FileVerification,
		PromptKey:  prompts.KeyVerifyClaims,
		Variables: map[string]string{
			"SourceMaterial": sourceMaterial,
			"Claims":         claimsJSON,
		},
		Schema: schemas.ClaimVerifications,
		Tier:   llm.TierLite,
	}, &resp)
	if err != nil {
		var schemaErr *llm.SchemaValidationError
		if !errors.As(err, &schemaErr) {
			return nil, nil, &StageError{Stage: StageVerify, Cause: err}
		}
		verifications := make([]types.ClaimVerification, len(claims))
		unresolved := make([]int, len(claims))
		for i, c := range claims {
			verifications[i] = unresolvedVerification(c, batch)
			unresolved[i] = c.Index
		}
		return verifications, &ReconciliationMismatch{
			Batch:      batch,
			Submitted:  len(claims),
			Unresolved: unresolved,
			Reason:     "response failed schema validation",
			Cause:      err,
		}, nil
	}

	verifications, mismatch := reconcile(batch, claims, resp.Verifications)
	return verifications, mismatch, nil
}

// reconcile maps returned entries onto submitted claims by claim_id. A claim is
// resolved only when exactly one entry carries its id and echoes its text;
// position in the response is never trusted.
func reconcile(batch int, claims []types.Claim, entries []verificationEntry) ([]types.ClaimVerification, *ReconciliationMismatch) {
	submitted := make(map[int]bool, len(claims))
	for _, c := range claims {
		submitted[c.Index] = true
	}

	byID := make(map[int][]verificationEntry, len(entries))
	var unknown, duplicated []int
	for _, e := range entries {
		if !submitted[e.ClaimID] {
			unknown = append(unknown, e.ClaimID)
			continue
		}
		if len(byID[e.ClaimID]) == 1 {
			duplicated = append(duplicated, e.ClaimID)
		}
		byID[e.ClaimID] = append(byID[e.ClaimID], e)
	}

	verifications := make([]types.ClaimVerification, len(claims))
	var unresolved []int
	textMismatches := 0
	for i, c := range claims {
		matches := byID[c.Index]
		if len(matches) == 1 && sameClaim(matches[0].Claim, c.Claim) {
			e := matches[0]
			verifications[i] = types.ClaimVerification{
				Claim:       c,
				Status:      types.VerificationStatus(e.Status),
				SourcePage:  e.SourcePage,
				SourceQuote: e.SourceQuote,
				Explanation: e.Explanation,
				Batch:       batch,
			}
			continue
		}
		if len(matches) == 1 {
			textMismatches++
		}
		verifications[i] = unresolvedVerification(c, batch)
		unresolved = append(unresolved, c.Index)
	}

	if len(unresolved) == 0 && len(unknown) == 0 && len(entries) == len(claims) {
		return verifications, nil
	}

	var reasons []string
	if len(entries) != len(claims) {
		reasons = append(reasons, fmt.Sprintf("expected %d entries, got %d", len(claims), len(entries)))
	}
	if len(unknown) > 0 {
		reasons = append(reasons, fmt.Sprintf("unknown claim ids %v", unknown))
	}
	if len(duplicated) > 0 {
		reasons = append(reasons, fmt.Sprintf("duplicate claim ids %v", duplicated))
	}
	if textMismatches > 0 {
		reasons = append(reasons, fmt.Sprintf("%d entries did not echo their claim text", textMismatches))
	}
	return verifications, &ReconciliationMismatch{
		Batch:      batch,
		Submitted:  len(claims),
		Returned:   len(entries),
		Unresolved: unresolved,
		Reason:     strings.Join(reasons, "; "),
	}
}

func unresolvedVerification(c types.Claim, batch int) types.ClaimVerification {
	return types.ClaimVerification{
		Claim:       c,
		Status:      types.StatusNotFound,
		Explanation: "no verifiable response for this claim",
		Batch:       batch,
		Unresolved:  true,
	}
}

// sameClaim compares claim text ignoring case, whitespace and enclosing punctuation
func sameClaim(a, b string) bool {
	return claimKey(a) == claimKey(b)
}

func claimKey(s string) string {
	return types.NormalizeText(strings.Trim(strings.TrimSpace(s), `."'`))
}

func formatClaims(claims []types.Claim) (string, error) {
	type promptClaim struct {
		ClaimID int    `json:"claim_id"`
		Claim   string `json:"claim"`
		Context string `json:"script_context"`
	}
	list := make([]promptClaim, len(claims))
	for i, c := range claims {
		list[i] = promptClaim{ClaimID: c.Index, Claim: c.Claim, Context: c.ScriptContext}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatSourceMaterial renders every section's key points followed by its raw text.
// A positive maxChars truncates each section's text to that many runes.
func FormatSourceMaterial(doc *types.ExtractedDocument, maxChars int) string {
	var sb strings.Builder
	for _, section := range doc.Sections {
		sb.WriteString(fmt.Sprintf("## %s (pages %s)\n", section.Name, section.PagesString()))
		if len(section.KeyPoints) > 0 {
			sb.WriteString("Key points:\n")
			for _, kp := range section.KeyPoints {
				sb.WriteString(fmt.Sprintf("- %s\n  Page %d: %q\n", kp.Point, kp.Page, llm.Truncate(kp.SourceQuote, quoteLimit)))
			}
		}
		if text := strings.TrimSpace(section.RawText); text != "" {
			sb.WriteString("Text:\n")
			sb.WriteString(llm.Truncate(text, maxChars))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

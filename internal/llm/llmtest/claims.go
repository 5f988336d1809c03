package llmtest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PromptClaim is a claim as submitted in a verify-claims prompt
type PromptClaim struct {
	ClaimID int    `json:"claim_id"`
	Claim   string `json:"claim"`
}

// VerifiedEntry is one entry of a claim_verifications response
type VerifiedEntry struct {
	ClaimID     int     `json:"claim_id"`
	Claim       string  `json:"claim"`
	Status      string  `json:"status"`
	SourcePage  *int    `json:"source_page"`
	SourceQuote *string `json:"source_quote"`
	Explanation string  `json:"explanation,omitempty"`
}

const claimsMarker = "Claims to verify:\n"

// PromptClaims decodes the claim list embedded in a rendered verify-claims prompt
func PromptClaims(prompt string) ([]PromptClaim, error) {
	idx := strings.Index(prompt, claimsMarker)
	if idx < 0 {
		return nil, fmt.Errorf("prompt has no claim list")
	}
	var claims []PromptClaim
	dec := json.NewDecoder(strings.NewReader(prompt[idx+len(claimsMarker):]))
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode claim list: %w", err)
	}
	return claims, nil
}

// VerificationsJSON encodes entries as a claim_verifications response
func VerificationsJSON(entries []VerifiedEntry) string {
	if entries == nil {
		entries = []VerifiedEntry{}
	}
	data, _ := json.Marshal(map[string]any{"verifications": entries})
	return string(data)
}

// Echo answers every submitted claim with the status chosen by statusFor, echoing
// the claim id and text as a well-behaved verifier would
func Echo(claims []PromptClaim, statusFor func(PromptClaim) string) []VerifiedEntry {
	entries := make([]VerifiedEntry, len(claims))
	for i, c := range claims {
		status := statusFor(c)
		entry := VerifiedEntry{ClaimID: c.ClaimID, Claim: c.Claim, Status: status}
		if status != "NOT_FOUND" {
			page := 1
			quote := c.Claim
			entry.SourcePage = &page
			entry.SourceQuote = &quote
		}
		entries[i] = entry
	}
	return entries
}

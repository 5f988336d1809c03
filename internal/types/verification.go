// Package types provides type definitions for structured data used throughout the doc-podcast pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// VerificationStatus is the support verdict for a claim
type VerificationStatus string

// Claim verification statuses
const (
	StatusSupported          VerificationStatus = "SUPPORTED"
	StatusPartiallySupported VerificationStatus = "PARTIALLY_SUPPORTED"
	StatusNotFound           VerificationStatus = "NOT_FOUND"
)

// CoverageStatus is the coverage verdict for a section
type CoverageStatus string

// Section coverage statuses
const (
	CoverageFull    CoverageStatus = "FULL"
	CoveragePartial CoverageStatus = "PARTIAL"
	CoverageOmitted CoverageStatus = "OMITTED"
)

// Claim is an atomic factual assertion extracted from the dialogue.
// Index is assigned once at extraction and survives batching and merge.
type Claim struct {
	Index         int    `json:"index"`
	Claim         string `json:"claim"`
	ScriptContext string `json:"script_context"`
	LineIndex     int    `json:"line_index"`
}

// ClaimVerification is a claim with its support verdict and best matching passage.
// SourcePage and SourceQuote are expected only when Status is not NOT_FOUND, but that is not guaranteed.
type ClaimVerification struct {
	Claim
	Status      VerificationStatus `json:"status"`
	SourcePage  *int               `json:"source_page"`
	SourceQuote *string            `json:"source_quote"`
	Explanation string             `json:"explanation,omitempty"`
	Batch       int                `json:"batch"`
	Unresolved  bool               `json:"unresolved,omitempty"`
}

// CoverageItem is the coverage verdict for one section
type CoverageItem struct {
	Section string         `json:"section"`
	Status  CoverageStatus `json:"status"`
	Covered []string       `json:"covered"`
	Omitted []string       `json:"omitted"`
}

// DegradedBatch records a verification batch whose response could not be fully reconciled
type DegradedBatch struct {
	Batch            int    `json:"batch"`
	Submitted        int    `json:"submitted"`
	Returned         int    `json:"returned"`
	UnresolvedClaims []int  `json:"unresolved_claims"`
	Reason           string `json:"reason"`
}

// DataQualityWarning is a recoverable condition absorbed by a stage
type DataQualityWarning struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// VerificationReport is the terminal artifact of a pipeline run
type VerificationReport struct {
	DocumentTitle      string               `json:"document_title,omitempty"`
	ScriptTitle        string               `json:"script_title,omitempty"`
	ScriptWordCount    int                  `json:"script_word_count,omitempty"`
	TotalClaims        int                  `json:"total_claims"`
	Supported          int                  `json:"supported"`
	PartiallySupported int                  `json:"partially_supported"`
	Hallucinations     int                  `json:"hallucinations"`
	SupportRate        float64              `json:"support_rate"`
	CoveragePercentage float64              `json:"coverage_percentage"`
	Degraded           bool                 `json:"degraded"`
	DegradedBatches    []DegradedBatch      `json:"degraded_batches,omitempty"`
	DataQuality        []DataQualityWarning `json:"data_quality,omitempty"`
	Claims             []ClaimVerification  `json:"claims"`
	Coverage           []CoverageItem       `json:"coverage"`
}

// HallucinationFlags returns the claims with status NOT_FOUND
func (r *VerificationReport) HallucinationFlags() []ClaimVerification {
	var flags []ClaimVerification
	for _, c := range r.Claims {
		if c.Status == StatusNotFound {
			flags = append(flags, c)
		}
	}
	return flags
}

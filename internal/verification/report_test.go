package verification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

func verified(index int, text string, status types.VerificationStatus) types.ClaimVerification {
	v := types.ClaimVerification{
		Claim:  types.Claim{Index: index, Claim: text, ScriptContext: text},
		Status: status,
		Batch:  1,
	}
	if status != types.StatusNotFound {
		page := 1
		quote := text
		v.SourcePage = &page
		v.SourceQuote = &quote
	}
	return v
}

func sampleInput() ReportInput {
	return ReportInput{
		DocumentTitle: "Annual Report",
		Script:        testScript(),
		SectionCount:  2,
		Claims: []types.ClaimVerification{
			verified(0, "Revenue grew 12%", types.StatusSupported),
			verified(1, "Three new markets", types.StatusSupported),
			verified(2, "Margins will narrow", types.StatusPartiallySupported),
			verified(3, "The CEO resigned", types.StatusNotFound),
		},
		Coverage: []types.CoverageItem{
			{Section: "Results", Status: types.CoverageFull, Covered: []string{"a", "b"}, Omitted: []string{}},
			{Section: "Risks", Status: types.CoveragePartial, Covered: []string{"c"}, Omitted: []string{"d", "e", "f", "g", "h", "i", "j"}},
		},
	}
}

func TestAssembleReport_Aggregates(t *testing.T) {
	report, err := AssembleReport(sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "Annual Report", report.DocumentTitle)
	assert.Equal(t, "Growth, With a Catch", report.ScriptTitle)
	assert.Equal(t, 19, report.ScriptWordCount)
	assert.Equal(t, 4, report.TotalClaims)
	assert.Equal(t, 2, report.Supported)
	assert.Equal(t, 1, report.PartiallySupported)
	assert.Equal(t, 1, report.Hallucinations)
	assert.Equal(t, 62.5, report.SupportRate)
	assert.Equal(t, 30.0, report.CoveragePercentage)
	assert.False(t, report.Degraded)

	flags := report.HallucinationFlags()
	require.Len(t, flags, 1)
	assert.Equal(t, "The CEO resigned", flags[0].Claim.Claim)
}

func TestAssembleReport_DegradedClaimsCountAsHallucinations(t *testing.T) {
	input := sampleInput()
	unresolved := unresolvedVerification(types.Claim{Index: 4, Claim: "Dividends doubled"}, 2)
	input.Claims = append(input.Claims, unresolved)
	input.DegradedBatches = []types.DegradedBatch{
		{Batch: 2, Submitted: 1, Returned: 0, UnresolvedClaims: []int{4}, Reason: "expected 1 entries, got 0"},
	}

	report, err := AssembleReport(input)
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalClaims)
	assert.Equal(t, 2, report.Hallucinations)
	assert.Equal(t, 50.0, report.SupportRate)
	assert.True(t, report.Degraded)
	assert.Equal(t, []int{4}, report.DegradedBatches[0].UnresolvedClaims)
}

func TestAssembleReport_EmptyCoverageIsAnError(t *testing.T) {
	input := sampleInput()
	input.Coverage = nil

	report, err := AssembleReport(input)
	assert.Nil(t, report)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageReport, stageErr.Stage)
}

func TestAssembleReport_NoClaims(t *testing.T) {
	input := sampleInput()
	input.Claims = nil

	report, err := AssembleReport(input)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalClaims)
	assert.Equal(t, float64(0), report.SupportRate)
	assert.NotNil(t, report.Claims)
}

func TestAssembleReport_IsDeterministic(t *testing.T) {
	input := sampleInput()
	first, err := AssembleReport(input)
	require.NoError(t, err)
	second, err := AssembleReport(input)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	// the report owns its slices
	input.Coverage[0].Covered[0] = "mutated"
	assert.Equal(t, "a", first.Coverage[0].Covered[0])
}

func TestAssembleReport_ConformsToSchema(t *testing.T) {
	report, err := AssembleReport(sampleInput())
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateResponse(schemas.VerificationReport, string(data)))
}

func TestCoveragePercentage(t *testing.T) {
	tests := []struct {
		name  string
		items []types.CoverageItem
		want  float64
	}{
		{"empty", nil, 0},
		{"two of two plus one of eight", []types.CoverageItem{
			{Covered: []string{"a", "b"}},
			{Covered: []string{"c"}, Omitted: []string{"d", "e", "f", "g", "h", "i", "j"}},
		}, 30},
		{"three of three plus zero of four", []types.CoverageItem{
			{Covered: []string{"a", "b", "c"}},
			{Omitted: []string{"d", "e", "f", "g"}},
		}, 42.86},
		{"one of three", []types.CoverageItem{
			{Covered: []string{"a"}, Omitted: []string{"b", "c"}},
		}, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoveragePercentage(tt.items))
		})
	}
}

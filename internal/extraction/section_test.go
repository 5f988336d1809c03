package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/llm/llmtest"
	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/types"
)

const overviewText = "[Page 2]\nRevenue grew 12% in 2023.\n\n[Page 3]\nThe company expanded into three new markets."

func keyPointJSON(point, category, quote string, page int) string {
	return fmt.Sprintf(`{"point": %q, "category": %q, "source_quote": %q, "page": %d}`, point, category, quote, page)
}

func keyPointsJSON(points ...string) string {
	return `{"key_points": [` + strings.Join(points, ",") + `]}`
}

func adapterFor(mock *llmtest.MockClient) llm.Caller {
	return llm.NewAdapter(mock)
}

func TestExtractSection_Success(t *testing.T) {
	mock := llmtest.Responding(map[string]string{
		prompts.KeyExtractKeyPoints: keyPointsJSON(
			keyPointJSON("Revenue grew 12% in 2023", "fact", "Revenue grew 12% in 2023.", 2),
			keyPointJSON("Expansion into three markets", "strategy", "expanded into three new markets", 3),
		),
	})

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2, 3}, overviewText)
	require.NoError(t, err)

	section := result.Section
	assert.Equal(t, "Overview", section.Name)
	assert.Equal(t, []int{2, 3}, section.Pages)
	assert.Equal(t, overviewText, section.RawText)
	require.Len(t, section.KeyPoints, 2)
	assert.Equal(t, types.CategoryFact, section.KeyPoints[0].Category)
	assert.Equal(t, 3, section.KeyPoints[1].Page)
	assert.Empty(t, result.Warnings)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.TierStandard, calls[0].Tier)
	assert.Contains(t, calls[0].Prompt, "Pages: 2, 3")
}

func TestExtractSection_EmptyTextSkipsModel(t *testing.T) {
	mock := llmtest.Responding(nil)

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Appendix", []int{9}, "  \n\t ")
	require.NoError(t, err)

	assert.Empty(t, mock.Calls())
	assert.NotNil(t, result.Section.KeyPoints)
	assert.Empty(t, result.Section.KeyPoints)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Appendix", result.Warnings[0].Subject)
	assert.Contains(t, result.Warnings[0].Message, "thin section")
}

// Every surviving key point must carry a non-empty quote and a page from the section.
func TestExtractSection_DropsPointsWithoutProvenance(t *testing.T) {
	mock := llmtest.Responding(map[string]string{
		prompts.KeyExtractKeyPoints: keyPointsJSON(
			keyPointJSON("Good point", "fact", "Revenue grew 12% in 2023.", 2),
			keyPointJSON("No quote", "fact", "   ", 2),
			keyPointJSON("Wrong page", "market", "expanded into three new markets", 7),
			keyPointJSON("Page zero", "context", "Revenue grew", 0),
		),
	})

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2, 3}, overviewText)
	require.NoError(t, err)

	require.Len(t, result.Section.KeyPoints, 1)
	assert.Equal(t, "Good point", result.Section.KeyPoints[0].Point)
	for _, kp := range result.Section.KeyPoints {
		assert.NotEmpty(t, kp.SourceQuote)
		assert.True(t, result.Section.HasPage(kp.Page))
	}

	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0].Message, "empty source quote")
	assert.Contains(t, result.Warnings[1].Message, "page 7")
	assert.Contains(t, result.Warnings[2].Message, "page 0")
}

func TestExtractSection_TruncatesToSeven(t *testing.T) {
	points := make([]string, 9)
	for i := range points {
		points[i] = keyPointJSON(fmt.Sprintf("Point %d", i+1), "fact", "Revenue grew 12%", 2)
	}
	mock := llmtest.Responding(map[string]string{prompts.KeyExtractKeyPoints: keyPointsJSON(points...)})

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2, 3}, overviewText)
	require.NoError(t, err)

	require.Len(t, result.Section.KeyPoints, MaxKeyPoints)
	assert.Equal(t, "Point 7", result.Section.KeyPoints[6].Point)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "truncated 9")
}

func TestExtractSection_QuoteNotInTextIsAdvisory(t *testing.T) {
	mock := llmtest.Responding(map[string]string{
		prompts.KeyExtractKeyPoints: keyPointsJSON(
			keyPointJSON("Profit doubled", "fact", "Profit doubled year over year", 2),
			keyPointJSON("Revenue grew", "fact", "REVENUE   grew 12%\nin 2023", 2),
		),
	})

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2, 3}, overviewText)
	require.NoError(t, err)

	assert.Len(t, result.Section.KeyPoints, 2, "quote mismatch keeps the point")
	require.Len(t, result.Warnings, 1, "whitespace and case differences are not mismatches")
	assert.Contains(t, result.Warnings[0].Message, "key point 1")
}

func TestExtractSection_NoSurvivorsIsThin(t *testing.T) {
	mock := llmtest.Responding(map[string]string{
		prompts.KeyExtractKeyPoints: keyPointsJSON(keyPointJSON("x", "fact", "", 2)),
	})

	result, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2}, overviewText)
	require.NoError(t, err)

	assert.Empty(t, result.Section.KeyPoints)
	last := result.Warnings[len(result.Warnings)-1]
	assert.Contains(t, last.Message, "thin section")
}

func TestExtractSection_SchemaFailureIsFatal(t *testing.T) {
	mock := llmtest.Responding(map[string]string{
		prompts.KeyExtractKeyPoints: `{"key_points": [{"point": "x", "category": "opinion", "source_quote": "x", "page": 2}]}`,
	})

	_, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2}, overviewText)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "Overview", extractionErr.Section)

	var schemaErr *llm.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, Stage, schemaErr.Stage)
}

func TestExtractSection_AdapterFailureIsFatal(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("connection reset")
		},
	}

	_, err := ExtractSection(context.Background(), adapterFor(mock), "Overview", []int{2}, overviewText)

	var adapterErr *llm.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Contains(t, err.Error(), `section "Overview"`)
}

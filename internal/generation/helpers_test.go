package generation

import (
	"fmt"
	"strings"

	"github.com/jonathan/doc-podcast/internal/types"
)

func testDocument() *types.ExtractedDocument {
	return &types.ExtractedDocument{
		Title: "Annual Report",
		Sections: []types.SectionContent{
			{
				Name:  "Overview",
				Pages: []int{1, 2},
				KeyPoints: []types.KeyPoint{
					{Point: "Revenue grew 12% in 2023", Category: types.CategoryFact, SourceQuote: "Revenue grew 12% in 2023.", Page: 1},
					{Point: "Three new markets were entered", Category: types.CategoryStrategy, SourceQuote: "expanded into three new markets", Page: 2},
				},
			},
			{
				Name:  "Outlook",
				Pages: []int{3},
				KeyPoints: []types.KeyPoint{
					{Point: "Margins are expected to narrow", Category: types.CategoryMarket, SourceQuote: strings.Repeat("long quote ", 40), Page: 3},
				},
			},
		},
	}
}

func testPlan() *types.EpisodePlan {
	return &types.EpisodePlan{
		Title:          "Growth, With a Catch",
		OpeningHook:    "What does 12% really mean?",
		Segments:       []types.PlanSegment{{Title: "Growth", KeyPointsToCover: []string{"KP-1", "KP-2"}, Approach: "numbers first"}},
		FrictionMoment: "Jordan doubts the margin story",
		Takeaway:       "Growth is not free",
	}
}

// scriptJSON builds a podcast_script response with n lines of the given words each
func scriptJSON(title string, lines, wordsPerLine int) string {
	entries := make([]string, lines)
	for i := range entries {
		speaker := "Alex"
		if i%2 == 1 {
			speaker = "Jordan"
		}
		text := strings.TrimSpace(strings.Repeat("word ", wordsPerLine))
		entries[i] = fmt.Sprintf(`{"speaker": %q, "text": %q}`, speaker, text)
	}
	return fmt.Sprintf(`{"title": %q, "dialogue": [%s], "word_count": 99999}`, title, strings.Join(entries, ","))
}

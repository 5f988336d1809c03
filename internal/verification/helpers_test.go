package verification

import (
	"fmt"

	"github.com/jonathan/doc-podcast/internal/types"
)

func testScript() *types.PodcastScript {
	return &types.PodcastScript{
		Title: "Growth, With a Catch",
		Dialogue: []types.DialogueLine{
			{Speaker: types.SpeakerAlex, Text: "Revenue grew twelve percent in 2023."},
			{Speaker: types.SpeakerJordan, Text: "And they entered three new markets?", EmotionCue: "skeptical"},
			{Speaker: types.SpeakerAlex, Text: "Exactly, and margins should narrow next year."},
		},
	}
}

// sectionWith builds a section with n key points whose texts are "<name> point i"
func sectionWith(name string, n int, firstPage int) types.SectionContent {
	s := types.SectionContent{Name: name, Pages: []int{firstPage}, RawText: fmt.Sprintf("[Page %d]\n%s text", firstPage, name)}
	for i := 1; i <= n; i++ {
		s.KeyPoints = append(s.KeyPoints, types.KeyPoint{
			Point:       fmt.Sprintf("%s point %d", name, i),
			Category:    types.CategoryFact,
			SourceQuote: fmt.Sprintf("%s quote %d", name, i),
			Page:        firstPage,
		})
	}
	return s
}

func claimsOf(texts ...string) []types.Claim {
	claims := make([]types.Claim, len(texts))
	for i, text := range texts {
		claims[i] = types.Claim{Index: i, Claim: text, ScriptContext: text, LineIndex: 0}
	}
	return claims
}

// Package types provides type definitions for structured data used throughout the doc-podcast pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Speaker is one of the two fixed podcast hosts
type Speaker string

// Hosts
const (
	SpeakerAlex   Speaker = "Alex"   // Host A, the enthusiastic explainer
	SpeakerJordan Speaker = "Jordan" // Host B, the thoughtful skeptic
)

// PlanSegment is one segment of the episode plan
type PlanSegment struct {
	Title            string   `json:"title"`
	KeyPointsToCover []string `json:"key_points_to_cover"` // KeyPointRef IDs
	Approach         string   `json:"approach"`
}

// EpisodePlan is the structured plan consumed by dialogue generation
type EpisodePlan struct {
	Title          string        `json:"title"`
	OpeningHook    string        `json:"opening_hook"`
	Segments       []PlanSegment `json:"segments"`
	FrictionMoment string        `json:"friction_moment"`
	Takeaway       string        `json:"takeaway"`
}

// DialogueLine is a single line of dialogue. Its position in the script is its address.
type DialogueLine struct {
	Speaker    Speaker `json:"speaker"`
	Text       string  `json:"text"`
	EmotionCue string  `json:"emotion_cue,omitempty"`
}

// PodcastScript is the generated two-host transcript
type PodcastScript struct {
	Title          string         `json:"title"`
	Dialogue       []DialogueLine `json:"dialogue"`
	FrictionMoment string         `json:"friction_moment"`
	Takeaway       string         `json:"takeaway"`
	WordCount      int            `json:"word_count"`
}

// CountWords returns the number of whitespace-separated tokens across all dialogue text
func CountWords(dialogue []DialogueLine) int {
	count := 0
	for _, line := range dialogue {
		count += len(strings.Fields(line.Text))
	}
	return count
}

// RecountWords recomputes WordCount from the dialogue
func (s *PodcastScript) RecountWords() {
	s.WordCount = CountWords(s.Dialogue)
}

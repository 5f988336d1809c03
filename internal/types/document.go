// Package types provides type definitions for structured data used throughout the doc-podcast pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Category classifies a key point
type Category string

// Key point categories
const (
	CategoryFact     Category = "fact"
	CategoryStrategy Category = "strategy"
	CategoryMarket   Category = "market"
	CategoryContext  Category = "context"
)

// KeyPoint is an atomic statement extracted from a section, with its source provenance
type KeyPoint struct {
	Point       string   `json:"point"`
	Category    Category `json:"category"`
	SourceQuote string   `json:"source_quote"`
	Page        int      `json:"page"`
}

// SectionContent holds the raw text and extracted key points of one configured section
type SectionContent struct {
	Name      string     `json:"name"`
	Pages     []int      `json:"pages"`
	RawText   string     `json:"raw_text"`
	KeyPoints []KeyPoint `json:"key_points"`
}

// ExtractedDocument is the root aggregate of the pipeline's ground truth.
// Sections keep configuration order and names are unique.
type ExtractedDocument struct {
	Title    string           `json:"title"`
	Sections []SectionContent `json:"sections"`
}

// KeyPointRef addresses a key point by a stable ID across the whole document
type KeyPointRef struct {
	ID       string   `json:"id"`
	Section  string   `json:"section"`
	KeyPoint KeyPoint `json:"key_point"`
}

// KeyPointID returns the stable ID of the n-th key point (0-based) in document order
func KeyPointID(n int) string {
	return fmt.Sprintf("KP-%d", n+1)
}

// IndexedKeyPoints flattens all key points in document order and assigns each a stable ID.
func (d *ExtractedDocument) IndexedKeyPoints() []KeyPointRef {
	refs := make([]KeyPointRef, 0, d.TotalKeyPoints())
	for _, section := range d.Sections {
		for _, kp := range section.KeyPoints {
			refs = append(refs, KeyPointRef{
				ID:       KeyPointID(len(refs)),
				Section:  section.Name,
				KeyPoint: kp,
			})
		}
	}
	return refs
}

// TotalKeyPoints returns the number of key points across all sections
func (d *ExtractedDocument) TotalKeyPoints() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.KeyPoints)
	}
	return total
}

// Section returns the section with the given name, or nil
func (d *ExtractedDocument) Section(name string) *SectionContent {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}

// HasPage reports whether the section covers the given page number
func (s *SectionContent) HasPage(page int) bool {
	for _, p := range s.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// PagesString renders the page list as "1, 2, 3"
func (s *SectionContent) PagesString() string {
	parts := make([]string, len(s.Pages))
	for i, p := range s.Pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}

package extraction

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/source"
	"github.com/jonathan/doc-podcast/internal/types"
)

// DefaultConcurrency bounds concurrent section extractions when none is configured
const DefaultConcurrency = 4

// SectionSpec is a configured section: a name and the 1-based pages it spans
type SectionSpec struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Pages []int  `json:"pages" yaml:"pages" validate:"required,min=1,dive,gt=0"`
}

// AssembleDocument composes extracted sections into a document, preserving order.
func AssembleDocument(title string, sections []types.SectionContent) (*types.ExtractedDocument, error) {
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s.Name) == "" {
			return nil, &AssemblyError{Message: "section name is empty"}
		}
		if seen[s.Name] {
			return nil, &AssemblyError{Section: s.Name, Message: "duplicate section name"}
		}
		seen[s.Name] = true
	}

	doc := &types.ExtractedDocument{
		Title:    title,
		Sections: make([]types.SectionContent, len(sections)),
	}
	copy(doc.Sections, sections)
	return doc, nil
}

// ExtractDocument extracts every section concurrently and assembles the document once
// all sections are done. The first failure cancels the remaining sections.
// Warnings are returned in section order.
func ExtractDocument(
	ctx context.Context,
	caller llm.Caller,
	provider source.Provider,
	title string,
	specs []SectionSpec,
	concurrency int,
) (*types.ExtractedDocument, []types.DataQualityWarning, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*SectionResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, spec := range specs {
		g.Go(func() error {
			rawText, err := provider.Text(gctx, spec.Pages)
			if err != nil {
				return &ExtractionError{Section: spec.Name, Cause: err}
			}
			result, err := ExtractSection(gctx, caller, spec.Name, spec.Pages, rawText)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sections := make([]types.SectionContent, len(results))
	var warnings []types.DataQualityWarning
	for i, r := range results {
		sections[i] = r.Section
		warnings = append(warnings, r.Warnings...)
	}

	doc, err := AssembleDocument(title, sections)
	if err != nil {
		return nil, nil, err
	}
	return doc, warnings, nil
}

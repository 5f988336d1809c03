// Package source supplies page-scoped document text to the extraction stage.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Provider returns the text of the given 1-based pages.
// Pages outside the document are skipped; if none remain the result is "".
type Provider interface {
	Text(ctx context.Context, pages []int) (string, error)
}

// PageSource is a document that can render single pages as plain text
type PageSource interface {
	NumPage() int
	PageText(page int) (string, error)
}

// PageProvider formats pages from a PageSource as "[Page N]\n<text>" blocks
// separated by blank lines. Rendered pages are memoized since sections may share pages.
type PageProvider struct {
	src   PageSource
	cache *gocache.Cache
}

// NewPageProvider creates a PageProvider over src
func NewPageProvider(src PageSource) *PageProvider {
	return &PageProvider{
		src:   src,
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Text implements Provider
func (p *PageProvider) Text(ctx context.Context, pages []int) (string, error) {
	blocks := make([]string, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if page < 1 || page > p.src.NumPage() {
			continue
		}
		text, err := p.pageText(page)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, FormatPage(page, text))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// NumPage returns the page count of the underlying document
func (p *PageProvider) NumPage() int {
	return p.src.NumPage()
}

func (p *PageProvider) pageText(page int) (string, error) {
	key := fmt.Sprintf("page:%d", page)
	if cached, found := p.cache.Get(key); found {
		return cached.(string), nil
	}
	text, err := p.src.PageText(page)
	if err != nil {
		return "", fmt.Errorf("failed to read page %d: %w", page, err)
	}
	p.cache.Set(key, text, gocache.DefaultExpiration)
	return text, nil
}

// FormatPage renders one page block with its provenance marker
func FormatPage(page int, text string) string {
	return fmt.Sprintf("[Page %d]\n%s", page, strings.TrimSpace(text))
}

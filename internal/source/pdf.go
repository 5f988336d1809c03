package source

import (
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
)

// pdfPages adapts a ledongthuc/pdf reader to PageSource.
// The reader shares one file handle, so page reads are serialized.
type pdfPages struct {
	mu     sync.Mutex
	reader *pdf.Reader
}

func (d *pdfPages) NumPage() int {
	return d.reader.NumPage()
}

func (d *pdfPages) PageText(page int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// PDFProvider is a Provider backed by a PDF file on disk
type PDFProvider struct {
	*PageProvider
	file *os.File
}

// OpenPDF opens a PDF for page-scoped text extraction. Call Close when done.
func OpenPDF(path string) (*PDFProvider, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	return &PDFProvider{
		PageProvider: NewPageProvider(&pdfPages{reader: r}),
		file:         f,
	}, nil
}

// Close releases the underlying file
func (p *PDFProvider) Close() error {
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}

// Info describes a PDF file
type Info struct {
	Path      string  `json:"path"`
	PageCount int     `json:"page_count"`
	SizeBytes int64   `json:"size_bytes"`
	SizeMB    float64 `json:"file_size_mb"`
	Title     string  `json:"title,omitempty"`
	Author    string  `json:"author,omitempty"`
	Subject   string  `json:"subject,omitempty"`
	Producer  string  `json:"producer,omitempty"`
}

// GetInfo reads page count, size and document metadata from a PDF
func GetInfo(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	meta := r.Trailer().Key("Info")
	return &Info{
		Path:      path,
		PageCount: r.NumPage(),
		SizeBytes: stat.Size(),
		SizeMB:    float64(stat.Size()) / 1024 / 1024,
		Title:     meta.Key("Title").Text(),
		Author:    meta.Key("Author").Text(),
		Subject:   meta.Key("Subject").Text(),
		Producer:  meta.Key("Producer").Text(),
	}, nil
}

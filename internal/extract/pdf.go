package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// PDFExtractor produces one document per PDF page, attributed to the file
// name and 1-based page number.
type PDFExtractor struct {
	tempDir string
}

// NewPDFExtractor creates a PDF extractor writing temp copies under tempDir
// ("" means the system temp dir).
func NewPDFExtractor(tempDir string) *PDFExtractor {
	return &PDFExtractor{tempDir: tempDir}
}

// Extract parses the uploaded PDF bytes. filename is kept only as source
// metadata; the bytes are staged in a scoped temp file that is removed on
// every exit path.
func (e *PDFExtractor) Extract(_ context.Context, filename string, data []byte) ([]domain.Document, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFormat)
	}

	var docs []domain.Document
	err := withTempFile(e.tempDir, "upload-*.pdf", data, func(path string) error {
		pages, err := readPages(path)
		if err != nil {
			return fmt.Errorf("%s: %w: %w", filename, domain.ErrUnsupportedFormat, err)
		}
		for i, text := range pages {
			if strings.TrimSpace(text) == "" {
				continue
			}
			docs = append(docs, domain.Document{
				Text: text,
				Meta: domain.Metadata{Source: filename, Page: i + 1},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func readPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// ImageExtractor produces one free-text block per image via a vision model.
// No bounding boxes or confidence scores, just text.
type ImageExtractor struct {
	reader ImageTextReader
}

// NewImageExtractor creates an image extractor.
func NewImageExtractor(reader ImageTextReader) *ImageExtractor {
	return &ImageExtractor{reader: reader}
}

// Extract reads text from the uploaded image bytes.
func (e *ImageExtractor) Extract(ctx context.Context, filename string, data []byte) ([]domain.Document, error) {
	mime, ok := ImageMIMEType(filename)
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFormat)
	}

	text, err := e.reader.ExtractImageText(ctx, data, mime)
	if err != nil {
		return nil, fmt.Errorf("extract image text %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyText)
	}

	return []domain.Document{
		{Text: text, Meta: domain.Metadata{Source: filename}},
	}, nil
}

// Package extract converts uploaded artifacts (PDFs, images, videos, YouTube
// URLs) into raw text documents carrying source metadata. All heavy lifting
// (OCR-grade text reading, speech-to-text) is delegated to hosted services;
// this package owns file handling and temp-path hygiene.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// ImageTextReader reads text out of an image via a vision model.
type ImageTextReader interface {
	ExtractImageText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Transcriber converts an audio file to text via a speech-to-text service.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// imageMIMETypes maps supported image extensions to MIME types.
var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageMIMEType returns the MIME type for a supported image file name, or
// false for unsupported extensions.
func ImageMIMEType(filename string) (string, bool) {
	mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(filename))]
	return mime, ok
}

// withTempFile writes data to a scoped temp file and runs fn on its path.
// The file is removed on every exit path, including fn failure.
func withTempFile(dir, pattern string, data []byte, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}

	return fn(path)
}

package ingest

import (
	"context"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// ChunkWriter defines the storage contract for ingestion.
type ChunkWriter interface {
	Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error)
	Persist(ctx context.Context) error
}

// Chunker splits documents into bounded overlapping chunks.
type Chunker interface {
	Split(docs []domain.Document) []domain.Chunk
}

// FileExtractor pulls text out of an uploaded file.
type FileExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) ([]domain.Document, error)
}

// URLExtractor pulls text out of a remote source.
type URLExtractor interface {
	Extract(ctx context.Context, url string) ([]domain.Document, error)
}

package retrieval

import (
	"context"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Repository defines the storage contract for chunk retrieval.
type Repository interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

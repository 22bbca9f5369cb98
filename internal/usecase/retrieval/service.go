package retrieval

import (
	"context"
	"fmt"

	"github.com/clarusedu/studybuddy/internal/domain"
)

const (
	// DefaultTopK is the number of chunks returned to the caller.
	DefaultTopK = 5
	// DefaultFetchK is the candidate pool size fetched for reranking.
	DefaultFetchK = 20
	// DefaultLambda balances relevance against diversity in the reranker.
	DefaultLambda = 0.5
)

// Params tunes the retrieval pipeline (zero values keep defaults).
type Params struct {
	TopK   int
	FetchK int
	Lambda float64
}

// Service retrieves chunks for a query: embed, KNN over the candidate
// pool, then diversity rerank.
type Service struct {
	repo   Repository
	embed  Embedder
	topK   int
	fetchK int
	lambda float64
}

// New creates a retrieval service with default parameters.
func New(repo Repository, embed Embedder) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		topK:   DefaultTopK,
		fetchK: DefaultFetchK,
		lambda: DefaultLambda,
	}
}

// WithParams overrides retrieval parameters (zero values keep defaults).
func (s *Service) WithParams(p Params) *Service {
	if p.TopK > 0 {
		s.topK = p.TopK
	}
	if p.FetchK > 0 {
		s.fetchK = p.FetchK
	}
	if p.Lambda > 0 {
		s.lambda = p.Lambda
	}
	return s
}

// Retrieve returns the chunks most relevant to query, reranked for
// diversity so near-duplicate chunks don't crowd out the context window.
func (s *Service) Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	fetchK := s.fetchK
	if fetchK < s.topK {
		fetchK = s.topK
	}

	candidates, err := s.repo.Search(ctx, embResult.Embedding, fetchK)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return rerankMMR(embResult.Embedding, candidates, s.lambda, s.topK), nil
}

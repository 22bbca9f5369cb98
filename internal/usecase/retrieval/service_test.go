package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/clarusedu/studybuddy/internal/domain"
)

type mockRepo struct {
	searchFn func(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)
}

func (m *mockRepo) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, k)
	}
	return nil, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func chunk(text string, vec []float32) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk:  domain.Chunk{Text: text, Meta: domain.Metadata{Source: "notes.pdf"}},
		Score:  0.9,
		Vector: vec,
	}
}

func TestRetrieve_FetchesCandidatePool(t *testing.T) {
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
	repo := &mockRepo{}

	var gotK int
	repo.searchFn = func(_ context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
		gotK = k
		if len(vector) != 2 {
			t.Errorf("unexpected query vector: %v", vector)
		}
		return []domain.ScoredChunk{
			chunk("a", []float32{1, 0}),
			chunk("b", []float32{0.9, 0.1}),
		}, nil
	}

	svc := New(repo, embed)
	chunks, err := svc.Retrieve(context.Background(), "what is osmosis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotK != DefaultFetchK {
		t.Errorf("fetch k = %d, want %d", gotK, DefaultFetchK)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestRetrieve_CapsAtTopK(t *testing.T) {
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}}
	repo := &mockRepo{}

	repo.searchFn = func(_ context.Context, _ []float32, _ int) ([]domain.ScoredChunk, error) {
		out := make([]domain.ScoredChunk, 0, 10)
		for i := 0; i < 10; i++ {
			out = append(out, chunk("c", []float32{1, float32(i) * 0.01, 0}))
		}
		return out, nil
	}

	svc := New(repo, embed)
	chunks, err := svc.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != DefaultTopK {
		t.Fatalf("expected %d chunks, got %d", DefaultTopK, len(chunks))
	}
}

func TestRetrieve_EmbedError(t *testing.T) {
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := New(&mockRepo{}, embed)

	if _, err := svc.Retrieve(context.Background(), "q"); err == nil {
		t.Fatal("expected embed error to propagate")
	}
}

func TestRetrieve_SearchError(t *testing.T) {
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	repo := &mockRepo{searchFn: func(_ context.Context, _ []float32, _ int) ([]domain.ScoredChunk, error) {
		return nil, errors.New("index down")
	}}

	svc := New(repo, embed)
	if _, err := svc.Retrieve(context.Background(), "q"); err == nil {
		t.Fatal("expected search error to propagate")
	}
}

func TestWithParams_ZeroKeepsDefaults(t *testing.T) {
	svc := New(&mockRepo{}, &mockEmbedder{}).WithParams(Params{TopK: 3})
	if svc.topK != 3 {
		t.Errorf("topK = %d, want 3", svc.topK)
	}
	if svc.fetchK != DefaultFetchK || svc.lambda != DefaultLambda {
		t.Errorf("fetchK/lambda = %d/%v, want defaults", svc.fetchK, svc.lambda)
	}
}

package retrieval

import (
	"math"
	"testing"

	"github.com/clarusedu/studybuddy/internal/domain"
)

func TestRerankMMR_FirstPickIsMostRelevant(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.ScoredChunk{
		chunk("orthogonal", []float32{0, 1}),
		chunk("aligned", []float32{1, 0}),
		chunk("diagonal", []float32{1, 1}),
	}

	out := rerankMMR(query, candidates, 0.5, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	if out[0].Text != "aligned" {
		t.Errorf("first pick = %q, want the query-aligned chunk", out[0].Text)
	}
}

func TestRerankMMR_PrefersDiversity(t *testing.T) {
	query := []float32{1, 0}
	// A near-duplicate of the best match plus one distinct chunk.
	candidates := []domain.ScoredChunk{
		chunk("best", []float32{0.9, 0.1}),
		chunk("duplicate", []float32{0.9, 0.11}),
		chunk("distinct", []float32{0.7, -0.7}),
	}

	out := rerankMMR(query, candidates, 0.5, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].Text != "best" {
		t.Errorf("first pick = %q, want best", out[0].Text)
	}
	if out[1].Text != "distinct" {
		t.Errorf("second pick = %q, want the distinct chunk over the duplicate", out[1].Text)
	}
}

func TestRerankMMR_SkipsVectorlessCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.ScoredChunk{
		chunk("no vector", nil),
		chunk("has vector", []float32{1, 0}),
	}

	out := rerankMMR(query, candidates, 0.5, 5)
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
	if out[0].Text != "has vector" {
		t.Errorf("got %q", out[0].Text)
	}
}

func TestRerankMMR_EmptyInput(t *testing.T) {
	if out := rerankMMR([]float32{1}, nil, 0.5, 5); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestRerankMMR_TopKAbovePoolSize(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.ScoredChunk{
		chunk("only", []float32{1, 0}),
	}

	out := rerankMMR(query, candidates, 0.5, 10)
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

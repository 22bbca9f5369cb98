package retrieval

import (
	"math"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// rerankMMR applies maximal marginal relevance (Carbonell & Goldstein 1998):
// iteratively pick the candidate maximizing
// lambda*sim(query, d) - (1-lambda)*max sim(d, selected).
// Candidates without vectors cannot be compared and are skipped.
func rerankMMR(queryVec []float32, candidates []domain.ScoredChunk, lambda float64, topK int) []domain.ScoredChunk {
	pool := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) > 0 {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 || topK <= 0 {
		return nil
	}
	if topK > len(pool) {
		topK = len(pool)
	}

	querySim := make([]float64, len(pool))
	for i, c := range pool {
		querySim[i] = cosineSimilarity(queryVec, c.Vector)
	}

	selected := make([]domain.ScoredChunk, 0, topK)
	picked := make([]bool, len(pool))

	for len(selected) < topK {
		best := -1
		bestScore := math.Inf(-1)

		for i := range pool {
			if picked[i] {
				continue
			}
			var maxSelSim float64
			for _, s := range selected {
				if sim := cosineSimilarity(pool[i].Vector, s.Vector); sim > maxSelSim {
					maxSelSim = sim
				}
			}
			score := lambda*querySim[i] - (1-lambda)*maxSelSim
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		if best < 0 {
			break
		}
		picked[best] = true
		selected = append(selected, pool[best])
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package domain

// Metadata records where a piece of text came from.
type Metadata struct {
	// Source is the origin file name or URL.
	Source string
	// Page is the 1-based page number for paginated sources, 0 otherwise.
	Page int
}

// Document is a raw extracted text segment, not yet split for embedding.
type Document struct {
	Text string
	Meta Metadata
}

// Chunk is a bounded text segment produced by the splitter. Chunks are
// immutable once created; length and overlap are bounded by the splitter
// configuration.
type Chunk struct {
	Text string
	Meta Metadata
}

// ScoredChunk is a chunk returned by similarity search, together with its
// similarity score and embedding vector (the vector feeds MMR reranking).
type ScoredChunk struct {
	Chunk
	Score  float64
	Vector []float32
}

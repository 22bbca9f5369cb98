package chunkstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/clarusedu/studybuddy/internal/db"
	"github.com/clarusedu/studybuddy/internal/domain"
)

const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldSource  = "source"
	fieldPage    = "page"
)

// store is the consumer interface for the chunk store (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Persist(ctx context.Context) error
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo persists text chunks as Redis hashes under a single FT index.
// Keys are random UUIDs; adding the same text twice stores it twice.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a chunk repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW overrides HNSW index parameters (zero values keep defaults).
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName())
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName(), err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName(),
		Prefixes: []string{chunkPrefix()},
		Fields: []db.IndexField{
			{Name: fieldSource, Type: db.IndexFieldTag},
			{Name: fieldPage, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", IndexName(), err)
	}
	return nil
}

// Add stores chunks with their vectors in a single pipelined write.
// Returns the generated keys in chunk order.
func (r *Repo) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	keys := make([]string, 0, len(chunks))
	for i, c := range chunks {
		key := chunkKey(uuid.NewString())
		fields := map[string]string{
			fieldContent: c.Text,
			fieldVector:  string(vectorToBytes(vectors[i])),
			fieldSource:  c.Meta.Source,
		}
		if c.Meta.Page > 0 {
			fields[fieldPage] = strconv.Itoa(c.Meta.Page)
		}
		items = append(items, db.HashSetItem{Key: key, Fields: fields})
		keys = append(keys, key)
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return nil, fmt.Errorf("store %d chunks: %w", len(items), err)
	}
	return keys, nil
}

// Search returns the k nearest chunks to the query vector. Entries carry
// their stored vectors so callers can rerank.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldContent, fieldVector, fieldSource, fieldPage},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	chunks := make([]domain.ScoredChunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		sc := domain.ScoredChunk{
			Chunk: domain.Chunk{
				Text: entry.Fields[fieldContent],
				Meta: domain.Metadata{Source: entry.Fields[fieldSource]},
			},
			Score: entry.Score,
		}
		if p := entry.Fields[fieldPage]; p != "" {
			if page, err := strconv.Atoi(p); err == nil {
				sc.Meta.Page = page
			}
		}
		if raw := entry.Fields[fieldVector]; raw != "" {
			sc.Vector = bytesToVector([]byte(raw))
		}
		chunks = append(chunks, sc)
	}
	return chunks, nil
}

// Count returns the total number of stored chunks.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Persist flushes the store to durable storage.
func (r *Repo) Persist(ctx context.Context) error {
	if err := r.store.Persist(ctx); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}
	return nil
}

// IndexName returns the FT index name for chunks.
func IndexName() string {
	return domain.KeyPrefix + "chunk-idx"
}

func chunkPrefix() string {
	return domain.KeyPrefix + "chunk:"
}

func chunkKey(id string) string {
	return chunkPrefix() + id
}

// vectorToBytes encodes a float32 slice as little-endian binary, the layout
// FT.SEARCH expects for vector fields.
func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesToVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}

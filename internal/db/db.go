package db

import (
	"context"
	"time"
)

// Store is the database facade for the vector store backend. Consumers depend
// on narrow sub-interfaces; the facade exists for wiring in main.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Persister
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based write operations.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// KVStore provides simple key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Persister flushes in-memory state to durable storage. Called after every
// ingestion batch; skipping it risks losing the batch on a crash.
type Persister interface {
	Persist(ctx context.Context) error
}

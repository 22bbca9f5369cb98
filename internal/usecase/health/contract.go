package health

import "context"

// VectorStorePinger checks vector store availability.
type VectorStorePinger interface {
	Ping(ctx context.Context) error
}

// UserStorePinger checks the account database availability.
type UserStorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

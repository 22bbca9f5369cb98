package chat

import (
	"context"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Retriever fetches the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error)
}

// Completer produces a chat completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

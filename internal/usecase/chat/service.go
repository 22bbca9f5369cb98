package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Service answers questions over the ingested material. With prior history
// the question is first condensed into a standalone one so retrieval sees
// the full intent, not just the follow-up fragment.
type Service struct {
	retriever Retriever
	completer Completer
	logger    *zap.Logger
}

// New creates a chat service.
func New(retriever Retriever, completer Completer, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, completer: completer, logger: logger}
}

// Answer runs the conversational retrieval pipeline over messages. The last
// message must be the pending user question; earlier messages form the
// history in user/assistant pairs.
func (s *Service) Answer(ctx context.Context, messages []domain.Message) (string, error) {
	pairs, question, err := domain.PairHistory(messages)
	if err != nil {
		return "", err
	}

	standalone := question
	if len(pairs) > 0 {
		standalone, err = s.condense(ctx, pairs, question)
		if err != nil {
			return "", err
		}
	}

	chunks, err := s.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	s.logger.Debug("answering question",
		zap.Int("history_pairs", len(pairs)),
		zap.Int("context_chunks", len(chunks)),
	)

	answer, err := s.completer.Complete(ctx, buildAnswerPrompt(chunks, standalone))
	if err != nil {
		return "", fmt.Errorf("complete answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Service) condense(ctx context.Context, pairs []domain.QAPair, question string) (string, error) {
	standalone, err := s.completer.Complete(ctx, buildCondensePrompt(pairs, question))
	if err != nil {
		return "", fmt.Errorf("condense question: %w", err)
	}
	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		// A blank rewrite would retrieve nothing useful.
		return question, nil
	}
	return standalone, nil
}

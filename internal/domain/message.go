package domain

import (
	"errors"
	"fmt"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser is a message written by the student.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the chatbot.
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation. The full history travels with
// every request; nothing is stored server-side.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrNoMessages signals an empty conversation.
var ErrNoMessages = errors.New("messages are required")

// Validate checks that the message has a known role and non-empty content.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("unknown role %q", m.Role)
	}
	if m.Content == "" {
		return errors.New("message content is required")
	}
	return nil
}

// QAPair is one completed (question, answer) exchange.
type QAPair struct {
	Question string
	Answer   string
}

// PairHistory rebuilds the pairwise chat history from a flat message list.
// Consecutive (user, assistant) entries form pairs; the final message is the
// unanswered question handed to the retrieval chain. A list of length 2n+1
// yields exactly n pairs.
func PairHistory(messages []Message) ([]QAPair, string, error) {
	if len(messages) == 0 {
		return nil, "", ErrNoMessages
	}

	pairs := make([]QAPair, 0, len(messages)/2)
	for i := 0; i+1 < len(messages)-1; i += 2 {
		pairs = append(pairs, QAPair{
			Question: messages[i].Content,
			Answer:   messages[i+1].Content,
		})
	}

	return pairs, messages[len(messages)-1].Content, nil
}

package chat

import (
	"strings"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// buildCondensePrompt asks the model to collapse the chat history and a
// follow-up question into a single standalone question.
func buildCondensePrompt(pairs []domain.QAPair, question string) string {
	var b strings.Builder
	b.WriteString("Given the following conversation and a follow up question, " +
		"rephrase the follow up question to be a standalone question, in its original language.\n\n")
	b.WriteString("Chat History:\n")
	for _, p := range pairs {
		b.WriteString("Human: ")
		b.WriteString(p.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(p.Answer)
		b.WriteString("\n")
	}
	b.WriteString("\nFollow Up Input: ")
	b.WriteString(question)
	b.WriteString("\nStandalone question:")
	return b.String()
}

// buildAnswerPrompt grounds the question in the retrieved chunks.
func buildAnswerPrompt(chunks []domain.ScoredChunk, question string) string {
	var b strings.Builder
	b.WriteString("Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n")
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}

// Package splitter turns long text into bounded, overlapping chunks suitable
// for embedding. Splitting is deterministic and side-effect free: the same
// input and configuration always produce the same chunks.
package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/clarusedu/studybuddy/internal/domain"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1500
	// DefaultChunkOverlap is the number of characters shared between
	// consecutive chunks to preserve cross-chunk context.
	DefaultChunkOverlap = 150
)

// separators, largest semantic unit first: paragraph, line, sentence, word.
// The empty string means a hard character cut as the last resort.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text recursively on semantic separators, preferring the
// largest separator that keeps chunks under the configured maximum length.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// New creates a splitter. Non-positive size/overlap fall back to defaults;
// overlap is clamped below the chunk size.
func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// SplitText splits text into chunks of at most the configured size. Every
// chunk after the first starts with the overlap-length tail of its
// predecessor. Text already under the limit passes through as a single chunk.
func (s *Splitter) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	units := breakIntoUnits(text, 0, s.chunkSize-s.chunkOverlap)

	var chunks []string
	current := ""
	for _, u := range units {
		if len(current)+len(u) > s.chunkSize && current != "" {
			chunks = append(chunks, current)
			current = overlapTail(current, s.chunkOverlap)
		}
		current += u
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// Split splits documents into chunks, carrying source metadata through.
func (s *Splitter) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, text := range s.SplitText(doc.Text) {
			chunks = append(chunks, domain.Chunk{Text: text, Meta: doc.Meta})
		}
	}
	return chunks
}

// breakIntoUnits recursively splits text on the separator hierarchy until
// every unit fits within maxLen. Separators stay attached to the preceding
// unit so that concatenating units reproduces the input exactly.
func breakIntoUnits(text string, sepIdx, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		return hardCut(text, maxLen)
	}

	sep := separators[sepIdx]
	if sep == "" {
		return hardCut(text, maxLen)
	}

	parts := splitKeepSeparator(text, sep)
	if len(parts) == 1 {
		return breakIntoUnits(text, sepIdx+1, maxLen)
	}

	var units []string
	for _, p := range parts {
		if len(p) <= maxLen {
			units = append(units, p)
			continue
		}
		units = append(units, breakIntoUnits(p, sepIdx+1, maxLen)...)
	}
	return units
}

// splitKeepSeparator splits text on sep, keeping sep attached to the end of
// each piece.
func splitKeepSeparator(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)
	// SplitAfter may leave a trailing empty piece when text ends with sep.
	if len(raw) > 1 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	return raw
}

// hardCut slices text into pieces of at most maxLen bytes, never cutting
// inside a multibyte rune: the cut backs off to the previous rune start.
func hardCut(text string, maxLen int) []string {
	var out []string
	for len(text) > maxLen {
		cut := runeStartBefore(text, maxLen)
		if cut == 0 {
			// maxLen is smaller than the first rune; emit it whole.
			_, cut = utf8.DecodeRuneInString(text)
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// overlapTail returns the tail of chunk of at most n bytes, aligned forward
// to a rune start, or the whole chunk when it is shorter than n.
func overlapTail(chunk string, n int) string {
	if len(chunk) <= n {
		return chunk
	}
	start := len(chunk) - n
	for start < len(chunk) && !utf8.RuneStart(chunk[start]) {
		start++
	}
	return chunk[start:]
}

// runeStartBefore returns the largest index at most i that begins a rune in s.
func runeStartBefore(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

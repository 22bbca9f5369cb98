package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/clarusedu/studybuddy/internal/domain"
)

func TestSplitText_ShortPassThrough(t *testing.T) {
	s := New(100, 20)
	chunks := s.SplitText("a short text")
	if len(chunks) != 1 || chunks[0] != "a short text" {
		t.Fatalf("expected pass-through, got %v", chunks)
	}
}

func TestSplitText_Empty(t *testing.T) {
	s := New(100, 20)
	if chunks := s.SplitText(""); chunks != nil {
		t.Fatalf("expected nil, got %v", chunks)
	}
}

func TestSplitText_Bounds(t *testing.T) {
	const maxSize = 100
	const overlap = 20
	s := New(maxSize, overlap)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := sb.String()

	chunks := s.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if len(c) > maxSize {
			t.Errorf("chunk %d exceeds max size: %d > %d", i, len(c), maxSize)
		}
	}

	// Every chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		want := prev
		if len(prev) > overlap {
			want = prev[len(prev)-overlap:]
		}
		if !strings.HasPrefix(chunks[i], want) {
			t.Errorf("chunk %d does not overlap predecessor tail", i)
		}
	}
}

func TestSplitText_Coverage(t *testing.T) {
	const overlap = 15
	s := New(80, overlap)

	text := strings.Repeat("Paragraph one has several sentences. Here is another one.\n\n", 10)
	chunks := s.SplitText(text)

	// Stripping each chunk's leading overlap (except the first) and
	// concatenating must reproduce the original text.
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		prev := chunks[i-1]
		n := overlap
		if len(prev) < n {
			n = len(prev)
		}
		sb.WriteString(c[n:])
	}
	if sb.String() != text {
		t.Fatal("concatenated chunks do not cover the original text")
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	s := New(120, 30)
	text := strings.Repeat("Some content to split into pieces. More words follow here. ", 20)

	a := s.SplitText(text)
	b := s.SplitText(text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitText_LongWordHardCut(t *testing.T) {
	const maxSize = 50
	s := New(maxSize, 10)
	text := strings.Repeat("x", 300)

	chunks := s.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > maxSize {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c))
		}
	}
}

func TestSplitText_MultibyteStaysValid(t *testing.T) {
	const maxSize = 100
	s := New(maxSize, 20)

	// Separator-free CJK text always reaches the hard-cut path.
	text := strings.Repeat("あ", 200)

	chunks := s.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if len(c) > maxSize {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c))
		}
		for _, r := range c {
			if r != 'あ' {
				t.Errorf("chunk %d contains mangled rune %q", i, r)
			}
		}
	}
}

func TestSplitText_MixedWidthRunes(t *testing.T) {
	s := New(60, 12)

	text := strings.Repeat("Grammar point: 日本語の文法を勉強します. ", 15)

	for i, c := range s.SplitText(text) {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
	}
}

func TestOverlapTail_RuneAligned(t *testing.T) {
	chunk := strings.Repeat("あ", 10) // 30 bytes

	tail := overlapTail(chunk, 7) // lands mid-rune, must shrink to 6 bytes
	if !utf8.ValidString(tail) {
		t.Fatalf("tail is not valid UTF-8: %q", tail)
	}
	if len(tail) > 7 {
		t.Errorf("tail exceeds requested length: %d", len(tail))
	}
	if !strings.HasSuffix(chunk, tail) {
		t.Errorf("tail %q is not a suffix of the chunk", tail)
	}
}

func TestSplit_CarriesMetadata(t *testing.T) {
	s := New(60, 10)
	docs := []domain.Document{
		{Text: strings.Repeat("Physics notes. ", 20), Meta: domain.Metadata{Source: "notes.pdf", Page: 1}},
		{Text: "short", Meta: domain.Metadata{Source: "notes.pdf", Page: 2}},
	}

	chunks := s.Split(docs)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	var page2 int
	for _, c := range chunks {
		if c.Meta.Source != "notes.pdf" {
			t.Errorf("chunk lost source metadata: %+v", c.Meta)
		}
		if c.Meta.Page == 2 {
			page2++
		}
	}
	if page2 != 1 {
		t.Errorf("expected exactly 1 chunk from page 2, got %d", page2)
	}
}

func TestNew_ClampsOverlap(t *testing.T) {
	s := New(100, 200)
	if s.chunkOverlap >= s.chunkSize {
		t.Fatalf("overlap %d not clamped below chunk size %d", s.chunkOverlap, s.chunkSize)
	}
}

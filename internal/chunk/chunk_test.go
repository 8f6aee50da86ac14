package chunk

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/document"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", DefaultSize, DefaultOverlap, false},
		{"zero size", 0, 0, true},
		{"negative size", -5, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
		{"zero overlap", 100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if tt.wantErr && !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	c, _ := New(DefaultSize, DefaultOverlap)
	if got := c.Split(uuid.New(), ""); got != nil {
		t.Fatalf("expected nil for empty text, got %d chunks", len(got))
	}
}

func TestSplitSingleChunk(t *testing.T) {
	c, _ := New(DefaultSize, DefaultOverlap)
	text := strings.Repeat("x", DefaultSize)

	chunks := c.Split(uuid.New(), text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for text of window size, got %d", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("chunk covers [%d,%d), want [0,%d)", chunks[0].Start, chunks[0].End, len(text))
	}
	if chunks[0].Content != text {
		t.Error("chunk content does not match input")
	}
}

func TestSplitKnownOffsets(t *testing.T) {
	// 2600 chars with no whitespace: the snap never triggers, so the
	// windows land exactly on the nominal offsets.
	c, _ := New(1000, 200)
	text := strings.Repeat("a", 2600)
	docID := uuid.New()

	chunks := c.Split(docID, text)
	want := []struct{ start, end int }{
		{0, 1000},
		{800, 1800},
		{1600, 2600},
		{2400, 2600},
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		ch := chunks[i]
		if ch.Start != w.start || ch.End != w.end {
			t.Errorf("chunk %d covers [%d,%d), want [%d,%d)", i, ch.Start, ch.End, w.start, w.end)
		}
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.DocumentID != docID {
			t.Errorf("chunk %d has wrong document ID", i)
		}
		if ch.Content != text[w.start:w.end] {
			t.Errorf("chunk %d content mismatch", i)
		}
	}
}

func TestSplitCountFormula(t *testing.T) {
	const (
		size    = 1000
		overlap = 200
	)
	c, _ := New(size, overlap)

	for _, length := range []int{1001, 1500, 1800, 2600, 5000, 10000, 12345} {
		text := strings.Repeat("b", length)
		got := len(c.Split(uuid.New(), text))

		// ceil((L-O)/(S-O)), tolerance of one either way
		expected := (length - overlap + (size - overlap) - 1) / (size - overlap)
		if got < expected-1 || got > expected+1 {
			t.Errorf("length %d: got %d chunks, expected %d±1", length, got, expected)
		}
	}
}

func TestSplitBoundarySnap(t *testing.T) {
	// A space at offset 95 sits inside the 10-byte lookback of a
	// 100-byte window, so the first chunk ends there. The second
	// window still starts at the nominal offset 80.
	c, _ := New(100, 20)
	text := strings.Repeat("a", 95) + " " + strings.Repeat("b", 104)

	chunks := c.Split(uuid.New(), text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].End != 95 {
		t.Errorf("first chunk ends at %d, want 95 (snapped to space)", chunks[0].End)
	}
	if strings.ContainsAny(chunks[0].Content, " ") {
		t.Error("snapped chunk should not end with the boundary space")
	}
	if chunks[1].Start != 80 {
		t.Errorf("second chunk starts at %d, want nominal 80", chunks[1].Start)
	}
}

func TestSplitNoWhitespaceInLookback(t *testing.T) {
	// Whitespace exists but outside the lookback; the word is split at
	// the nominal end.
	c, _ := New(100, 20)
	text := strings.Repeat("a", 50) + " " + strings.Repeat("b", 149)

	chunks := c.Split(uuid.New(), text)
	if chunks[0].End != 100 {
		t.Errorf("first chunk ends at %d, want nominal 100", chunks[0].End)
	}
}

func TestSplitZeroOverlapCoverage(t *testing.T) {
	// With zero overlap the whitespace snap is disabled: snapping an
	// end before the next window's start would leave text that belongs
	// to no chunk.
	c, _ := New(1000, 0)
	text := strings.Repeat("a", 905) + " " + strings.Repeat("b", 1094)

	chunks := c.Split(uuid.New(), text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].End != 1000 {
		t.Errorf("first chunk ends at %d, want nominal 1000", chunks[0].End)
	}
	if chunks[1].Start != 1000 {
		t.Errorf("second chunk starts at %d, want 1000", chunks[1].Start)
	}
	assertContiguousCoverage(t, chunks, utf8.RuneCountInString(text))
}

func TestSplitCoverageWithSnap(t *testing.T) {
	// Whitespace scattered through the text triggers snaps; every
	// snapped end must still reach at least the next window's start.
	for _, overlap := range []int{0, 5, 20, 50} {
		c, err := New(100, overlap)
		if err != nil {
			t.Fatalf("overlap %d: %v", overlap, err)
		}
		text := strings.Repeat("lorem ipsum dolor sit amet ", 40)
		chunks := c.Split(uuid.New(), text)
		assertContiguousCoverage(t, chunks, utf8.RuneCountInString(text))
	}
}

func assertContiguousCoverage(t *testing.T, chunks []document.Chunk, length int) {
	t.Helper()
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	if chunks[0].Start != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start > chunks[i-1].End {
			t.Errorf("gap between chunk %d end %d and chunk %d start %d",
				i-1, chunks[i-1].End, i, chunks[i].Start)
		}
	}
	if last := chunks[len(chunks)-1].End; last != length {
		t.Errorf("last chunk ends at %d, want %d", last, length)
	}
}

func TestSplitMultibyteRunes(t *testing.T) {
	// Sizes are character counts: a CJK-only text is windowed on rune
	// boundaries and every chunk stays valid UTF-8.
	c, _ := New(1000, 200)
	text := strings.Repeat("世", 2600)

	chunks := c.Split(uuid.New(), text)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks for 2600 runes, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Content) {
			t.Errorf("chunk %d content is invalid UTF-8", i)
		}
		if got := utf8.RuneCountInString(ch.Content); got != ch.End-ch.Start {
			t.Errorf("chunk %d holds %d runes for range [%d,%d)", i, got, ch.Start, ch.End)
		}
	}
	if chunks[0].End != 1000 || chunks[1].Start != 800 {
		t.Errorf("offsets not in characters: end=%d, next start=%d", chunks[0].End, chunks[1].Start)
	}
}

func TestSplitOverlapPreserved(t *testing.T) {
	c, _ := New(1000, 200)
	text := strings.Repeat("word and more text ", 300) // ~5700 chars

	chunks := c.Split(uuid.New(), text)
	step := 1000 - 200
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start != chunks[i-1].Start+step {
			t.Errorf("chunk %d starts at %d, want %d", i, chunks[i].Start, chunks[i-1].Start+step)
		}
	}
}

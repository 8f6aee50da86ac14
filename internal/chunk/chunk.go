// Package chunk splits extracted text into overlapping character
// windows for embedding.
package chunk

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/document"
)

const (
	// DefaultSize is the window size in characters.
	DefaultSize = 1000

	// DefaultOverlap is how many characters consecutive windows share.
	DefaultOverlap = 200

	// boundaryLookbackDivisor bounds the whitespace snap: a window end
	// may move back at most size/boundaryLookbackDivisor characters.
	boundaryLookbackDivisor = 10
)

var ErrInvalidParams = errors.New("invalid chunker parameters")

// Chunker produces overlapping windows of fixed nominal size, measured
// in characters so multi-byte text is never cut mid-rune. Window ends
// snap backward to the nearest whitespace within a small lookback so
// words are not split; the following window still starts at the
// nominal offset, so overlap is preserved.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. Overlap must be non-negative
// and strictly smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidParams, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d for size %d", ErrInvalidParams, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split cuts text into chunks for the given document. Empty text
// yields nil; text no longer than the window size yields exactly one
// chunk covering all of it.
func (c *Chunker) Split(docID uuid.UUID, text string) []document.Chunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []document.Chunk{{
			ID:         uuid.New(),
			DocumentID: docID,
			Index:      0,
			Content:    text,
			Start:      0,
			End:        len(runes),
		}}
	}

	step := c.size - c.overlap
	if step <= 0 {
		step = 1
	}

	// The snap may never move an end before the next window's nominal
	// start, or the text between them would fall out of every chunk.
	// Capping the lookback at the overlap guarantees contiguous
	// coverage; with zero overlap the snap is disabled entirely.
	lookback := c.size / boundaryLookbackDivisor
	if lookback > c.overlap {
		lookback = c.overlap
	}

	var chunks []document.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snapToBoundary(runes, start, end, lookback)
		}
		chunks = append(chunks, document.Chunk{
			ID:         uuid.New(),
			DocumentID: docID,
			Index:      len(chunks),
			Content:    string(runes[start:end]),
			Start:      start,
			End:        end,
		})
	}
	return chunks
}

// Size returns the nominal window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the window overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// snapToBoundary moves end backward to the closest whitespace within
// lookback characters. If the window tail has no whitespace the
// nominal end stands, splitting the word.
func snapToBoundary(runes []rune, start, end, lookback int) int {
	limit := end - lookback
	if limit <= start {
		limit = start + 1
	}
	for i := end - 1; i >= limit; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}

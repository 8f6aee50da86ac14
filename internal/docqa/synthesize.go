package docqa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/provider"
)

const (
	// truncationPenalty scales confidence when chunks were dropped to
	// fit the context budget. The extractive fallback is never scaled;
	// its confidence is the top similarity as-is.
	truncationPenalty = 0.9

	// fallbackExcerptChars bounds each excerpt in an extractive answer.
	fallbackExcerptChars = 300
)

// Source attributes part of an answer to a document.
type Source struct {
	DocumentID uuid.UUID
	Name       string
	Similarity float64
}

// Answer is the result of one Ask call.
type Answer struct {
	Text         string
	Sources      []Source
	Confidence   float64
	QuestionType QuestionType

	// Generated is false when the extractive fallback produced the
	// text.
	Generated bool
}

// Synthesizer turns retrieved chunks into an answer. Generation
// failures degrade to an extractive answer; they are never surfaced to
// the caller.
type Synthesizer struct {
	gen    provider.Generator
	cfg    Config
	logger *slog.Logger
}

// NewSynthesizer wires the answering path.
func NewSynthesizer(gen provider.Generator, cfg Config, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, cfg: cfg.withDefaults(), logger: logger}
}

// Synthesize answers the question from the chunks, which must be
// ordered best-first. With no chunks it returns the fixed no-results
// answer with zero confidence.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, qType QuestionType, chunks []RetrievedChunk) Answer {
	if len(chunks) == 0 {
		return Answer{
			Text:         noRelevantDocuments,
			Sources:      []Source{},
			Confidence:   0,
			QuestionType: qType,
		}
	}

	kept, truncated := s.fitContext(chunks)
	blocks := make([]string, len(kept))
	for i, ch := range kept {
		blocks[i] = contextBlock(i+1, ch.DocumentName, ch.Similarity, ch.Content)
	}

	answer := Answer{
		QuestionType: qType,
		Sources:      sourcesFrom(kept),
	}

	text, err := s.gen.Generate(ctx, provider.GenerateRequest{
		System:      systemPrompts[qType],
		Prompt:      buildPrompt(blocks, question),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Warn("generation failed, using extractive fallback", "error", err)
		answer.Text = extractiveAnswer(kept)
		answer.Confidence = clamp(kept[0].Similarity)
		return answer
	}

	answer.Text = text
	answer.Generated = true
	confidence := kept[0].Similarity
	if truncated {
		confidence *= truncationPenalty
	}
	answer.Confidence = clamp(confidence)
	return answer
}

// fitContext drops whole chunks, lowest similarity first, until the
// rendered context fits the budget. At least one chunk always
// survives.
func (s *Synthesizer) fitContext(chunks []RetrievedChunk) (kept []RetrievedChunk, truncated bool) {
	kept = chunks
	for len(kept) > 1 && contextSize(kept) > s.cfg.MaxContextChars {
		kept = kept[:len(kept)-1]
		truncated = true
	}
	if truncated {
		s.logger.Debug("context truncated", "kept", len(kept), "dropped", len(chunks)-len(kept))
	}
	return kept, truncated
}

func contextSize(chunks []RetrievedChunk) int {
	total := 0
	for i, ch := range chunks {
		total += len(contextBlock(i+1, ch.DocumentName, ch.Similarity, ch.Content)) + 2
	}
	return total
}

// extractiveAnswer stitches chunk excerpts when the model is
// unavailable.
func extractiveAnswer(chunks []RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("The answer generator is currently unavailable. The most relevant passages from your documents:\n")
	for _, ch := range chunks {
		fmt.Fprintf(&b, "\n- %s (from %s)", excerptOf(ch.Content, fallbackExcerptChars), ch.DocumentName)
	}
	return b.String()
}

// excerptOf shortens s to at most limit characters, appending an
// ellipsis when cut. Cuts land on rune boundaries so excerpts of
// multi-byte text stay valid UTF-8.
func excerptOf(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// sourcesFrom collapses chunks to one source per document, keeping the
// best similarity. Input order is best-first, so the first sighting of
// a document carries its best score and the output stays sorted.
func sourcesFrom(chunks []RetrievedChunk) []Source {
	seen := make(map[uuid.UUID]bool, len(chunks))
	sources := make([]Source, 0, len(chunks))
	for _, ch := range chunks {
		if seen[ch.DocumentID] {
			continue
		}
		seen[ch.DocumentID] = true
		sources = append(sources, Source{
			DocumentID: ch.DocumentID,
			Name:       ch.DocumentName,
			Similarity: ch.Similarity,
		})
	}
	return sources
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

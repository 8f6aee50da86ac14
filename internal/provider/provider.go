// Package provider defines the AI capabilities the pipeline consumes:
// text embedding and answer generation. Interfaces live here, next to
// their consumers; concrete implementations are in subpackages.
package provider

import (
	"context"
	"errors"
)

var (
	// ErrEmbeddingUnavailable is returned when the embedding provider
	// cannot be reached or returns an unusable response. Callers treat
	// it as a dependency failure, not a user error.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationFailed is returned when answer generation fails.
	// The synthesizer converts it to an extractive fallback; it never
	// reaches the service boundary.
	ErrGenerationFailed = errors.New("answer generation failed")
)

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest carries one generation call.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Generator produces a model answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

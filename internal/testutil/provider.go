// Package testutil provides deterministic provider substitutes for
// tests. No network, no randomness: the same input always produces the
// same output.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/docsage/docsage/internal/provider"
)

// Embedder is a deterministic provider.Embedder. By default each text
// maps to a normalized vector derived from its SHA-256 hash; explicit
// vectors can be registered for precise similarity control.
//
// Thread-safe for concurrent use.
type Embedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	dim     int
	err     error
	calls   int
}

// NewEmbedder creates an embedder producing vectors of the given width.
func NewEmbedder(dim int) *Embedder {
	return &Embedder{
		vectors: make(map[string][]float32),
		dim:     dim,
	}
}

// SetVector registers an explicit vector for a text. Use this to
// control exact distances between test inputs.
func (e *Embedder) SetVector(text string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors[text] = vec
}

// FailWith makes every subsequent Embed call return err. Pass nil to
// restore normal behavior.
func (e *Embedder) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Calls reports how many times Embed was invoked.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.err != nil {
		return nil, e.err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.vectors[text]; ok {
			vectors[i] = v
			continue
		}
		vectors[i] = deterministicVector(text, e.dim)
	}
	return vectors, nil
}

// Generator is a scripted provider.Generator. It matches the prompt
// against registered patterns (substring, case-insensitive, first
// match wins) and returns the associated response, or the fallback.
//
// Thread-safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rules    []generatorRule
	fallback string
	err      error
	calls    []provider.GenerateRequest
}

type generatorRule struct {
	pattern  string
	response string
}

// NewGenerator creates a generator returning fallback when no pattern
// matches.
func NewGenerator(fallback string) *Generator {
	return &Generator{fallback: fallback}
}

// AddResponse registers a pattern-response pair.
func (g *Generator) AddResponse(pattern, response string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, generatorRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// FailWith makes every subsequent Generate call return err. Pass nil
// to restore normal behavior.
func (g *Generator) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Calls returns a copy of every recorded request.
func (g *Generator) Calls() []provider.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := make([]provider.GenerateRequest, len(g.calls))
	copy(cp, g.calls)
	return cp
}

// Reset clears recorded requests, keeping registered responses.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

func (g *Generator) Generate(ctx context.Context, req provider.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}

	lower := strings.ToLower(req.Prompt)
	for _, rule := range g.rules {
		if strings.Contains(lower, rule.pattern) {
			return rule.response, nil
		}
	}
	return g.fallback, nil
}

// deterministicVector generates a normalized vector from text using
// SHA-256. The same text always produces the same vector.
func deterministicVector(text string, dim int) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, dim)

	for i := range vec {
		idx := (i * 4) % len(hash)
		bits := binary.LittleEndian.Uint32([]byte{
			hash[idx%32],
			hash[(idx+1)%32],
			hash[(idx+2)%32],
			hash[(idx+3)%32],
		})
		vec[i] = (float32(bits)/float32(math.MaxUint32))*2 - 1
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Package googleai implements the embedding and generation providers
// on the Google AI platform through Genkit.
package googleai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/docsage/docsage/internal/provider"
)

// VectorDimension is the embedding width requested from the model and
// the width of the pgvector column. Changing it requires a migration.
const VectorDimension int32 = 768

// Config selects the models and bounds outbound request rate.
type Config struct {
	// EmbedderModel, e.g. "text-embedding-004".
	EmbedderModel string

	// GenerationModel, e.g. "googleai/gemini-2.0-flash".
	GenerationModel string

	// RequestsPerSecond caps calls to the platform. Zero disables
	// limiting.
	RequestsPerSecond float64
}

// Provider implements provider.Embedder and provider.Generator against
// Google AI. Safe for concurrent use.
type Provider struct {
	g        *genkit.Genkit
	embedder ai.Embedder
	model    string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New initializes Genkit with the Google AI plugin. Credentials come
// from the environment (GEMINI_API_KEY), resolved by the plugin.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.EmbedderModel == "" || cfg.GenerationModel == "" {
		return nil, fmt.Errorf("embedder and generation models are required")
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Provider{
		g:        g,
		embedder: googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel),
		model:    cfg.GenerationModel,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

// Embed returns one vector per text, in order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	docs := make([]*ai.Document, len(texts))
	for i, text := range texts {
		docs[i] = ai.DocumentFromText(text, nil)
	}

	dim := VectorDimension
	resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			provider.ErrEmbeddingUnavailable, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", provider.ErrEmbeddingUnavailable, i)
		}
		vectors[i] = emb.Embedding
	}
	return vectors, nil
}

// Generate runs one prompt through the configured model.
func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}

	temp := float32(req.Temperature)
	opts := []ai.GenerateOption{
		ai.WithPrompt(req.Prompt),
		ai.WithModelName(p.model),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     &temp,
			MaxOutputTokens: int32(req.MaxTokens),
		}),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}

	resp, err := genkit.Generate(ctx, p.g, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrGenerationFailed, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", provider.ErrGenerationFailed)
	}
	return text, nil
}

func (p *Provider) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

package docqa

import "time"

// Config carries the tunables of the question-answering pipeline.
// Zero values are replaced by the defaults below in NewService.
type Config struct {
	// MaxChunks is the number of chunks handed to the synthesizer.
	MaxChunks int

	// MaxSearchResults caps raw Search results.
	MaxSearchResults int

	// SimilarityThreshold is the floor below which matches are dropped.
	SimilarityThreshold float64

	// MaxContextChars bounds the assembled context; whole chunks are
	// dropped lowest-similarity-first to fit.
	MaxContextChars int

	// Temperature and MaxTokens are passed to the generator.
	Temperature float64
	MaxTokens   int

	// PipelineTimeout bounds document processing end to end.
	PipelineTimeout time.Duration

	// EmbedConcurrency bounds parallel embedding calls per document.
	EmbedConcurrency int
}

// Defaults matching the service's documented behavior.
const (
	DefaultMaxChunks           = 5
	DefaultMaxSearchResults    = 10
	DefaultSimilarityThreshold = 0.7
	DefaultMaxContextChars     = 6000
	DefaultTemperature         = 0.1
	DefaultMaxTokens           = 500
	DefaultPipelineTimeout     = 2 * time.Minute
	DefaultEmbedConcurrency    = 4
)

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunks:           DefaultMaxChunks,
		MaxSearchResults:    DefaultMaxSearchResults,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxContextChars:     DefaultMaxContextChars,
		Temperature:         DefaultTemperature,
		MaxTokens:           DefaultMaxTokens,
		PipelineTimeout:     DefaultPipelineTimeout,
		EmbedConcurrency:    DefaultEmbedConcurrency,
	}
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxChunks <= 0 {
		c.MaxChunks = d.MaxChunks
	}
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = d.MaxSearchResults
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = d.MaxContextChars
	}
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.PipelineTimeout <= 0 {
		c.PipelineTimeout = d.PipelineTimeout
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = d.EmbedConcurrency
	}
	return c
}

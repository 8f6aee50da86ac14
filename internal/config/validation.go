package config

import "fmt"

// Validate checks all configuration values and fails fast on the
// first violation. Called from Load; callers constructing a Config by
// hand should call it themselves.
func (c *Config) Validate() error {
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidModelName)
	}
	if c.GenerationModel == "" {
		return fmt.Errorf("%w: generation_model is empty", ErrInvalidModelName)
	}

	// Temperature range: 0.0 (deterministic) to 2.0
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 || c.MaxTokens > 65536 {
		return fmt.Errorf("%w: must be between 1 and 65536, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxFileSize, c.MaxFileSize)
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: must be in (0, 1], got %.2f", ErrInvalidThreshold, c.SimilarityThreshold)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	return nil
}

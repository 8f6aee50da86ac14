// Package config provides application configuration with multi-source
// priority.
//
// Sources, highest to lowest:
//  1. Environment variables (DOCSAGE_* plus DATABASE_URL)
//  2. Config file (~/.docsage/config.yaml or ./config.yaml)
//  3. Defaults
//
// Sensitive values (the Postgres password) are masked in String() and
// MarshalJSON; GEMINI_API_KEY is read directly by Genkit and never
// passes through this package.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidChunking indicates chunk size/overlap are out of range.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidThreshold indicates the similarity threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid similarity threshold")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidMaxFileSize indicates the upload limit is out of range.
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidModelName indicates a model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON.
type Config struct {
	// AI models
	EmbedderModel   string  `mapstructure:"embedder_model" json:"embedder_model"`
	GenerationModel string  `mapstructure:"generation_model" json:"generation_model"`
	Temperature     float64 `mapstructure:"temperature" json:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens" json:"max_tokens"`
	RequestsPerSec  float64 `mapstructure:"requests_per_sec" json:"requests_per_sec"`

	// Ingestion
	ChunkSize    int   `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int   `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	MaxFileSize  int64 `mapstructure:"max_file_size" json:"max_file_size"`

	// Retrieval and answering
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" json:"similarity_threshold"`
	MaxChunks           int     `mapstructure:"max_chunks" json:"max_chunks"`
	MaxSearchResults    int     `mapstructure:"max_search_results" json:"max_search_results"`
	MaxContextChars     int     `mapstructure:"max_context_chars" json:"max_context_chars"`
	PipelineTimeoutSec  int     `mapstructure:"pipeline_timeout_sec" json:"pipeline_timeout_sec"`

	// Storage
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Logging
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".docsage")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	viper.SetEnvPrefix("DOCSAGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	// Models
	viper.SetDefault("embedder_model", "text-embedding-004")
	viper.SetDefault("generation_model", "googleai/gemini-2.0-flash")
	viper.SetDefault("temperature", 0.1)
	viper.SetDefault("max_tokens", 500)
	viper.SetDefault("requests_per_sec", 5.0)

	// Ingestion
	viper.SetDefault("chunk_size", 1000)
	viper.SetDefault("chunk_overlap", 200)
	viper.SetDefault("max_file_size", 10*1024*1024)

	// Retrieval
	viper.SetDefault("similarity_threshold", 0.7)
	viper.SetDefault("max_chunks", 5)
	viper.SetDefault("max_search_results", 10)
	viper.SetDefault("max_context_chars", 6000)
	viper.SetDefault("pipeline_timeout_sec", 120)

	// PostgreSQL (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "docsage")
	viper.SetDefault("postgres_password", "docsage_dev_password")
	viper.SetDefault("postgres_db_name", "docsage")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Logging
	viper.SetDefault("log_json", false)
	viper.SetDefault("log_level", "info")
}

// maskedValue is the placeholder for masked sensitive data. Full-width
// blocks avoid substring matches against real secret fragments.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters for
// debugging.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON masks sensitive fields. When adding new secrets, update
// this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

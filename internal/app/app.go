// Package app assembles the production service graph: configuration,
// logging, database pool, AI provider and the docqa service. The CLI
// commands depend only on App.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsage/docsage/db"
	"github.com/docsage/docsage/internal/chunk"
	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/docqa"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/log"
	"github.com/docsage/docsage/internal/provider/googleai"
	"github.com/docsage/docsage/internal/storage"
	"github.com/docsage/docsage/internal/vectorindex"
)

// App holds the wired service and the resources it owns.
type App struct {
	Service *docqa.Service
	Config  *config.Config
	Logger  log.Logger

	pool *pgxpool.Pool
}

// New loads configuration, runs migrations and wires the full service.
// Callers must Close the returned App.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	pool, err := newDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := googleai.New(ctx, googleai.Config{
		EmbedderModel:     cfg.EmbedderModel,
		GenerationModel:   cfg.GenerationModel,
		RequestsPerSecond: cfg.RequestsPerSec,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing AI provider: %w", err)
	}

	chunker, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating chunker: %w", err)
	}

	service := docqa.NewService(
		storage.NewPostgres(pool, logger),
		vectorindex.NewPostgres(pool, logger),
		provider,
		provider,
		extract.New(cfg.MaxFileSize, logger),
		chunker,
		docqa.Config{
			MaxChunks:           cfg.MaxChunks,
			MaxSearchResults:    cfg.MaxSearchResults,
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxContextChars:     cfg.MaxContextChars,
			Temperature:         cfg.Temperature,
			MaxTokens:           cfg.MaxTokens,
			PipelineTimeout:     time.Duration(cfg.PipelineTimeoutSec) * time.Second,
		},
		logger,
	)

	return &App{
		Service: service,
		Config:  cfg,
		Logger:  logger,
		pool:    pool,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// newDBPool runs migrations and opens a connection pool.
func newDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Fail fast if the database is unreachable.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// queryTimeout bounds a single nearest-neighbour query so a slow index
// scan cannot hold the request forever.
const queryTimeout = 30 * time.Second

// Postgres is the production Index, backed by a pgvector column on the
// chunks table. The user_id column is the namespace; every statement
// filters on it.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres index over an existing pool. The pool
// is owned by the caller.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

func (p *Postgres) Upsert(ctx context.Context, namespace string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(`
			INSERT INTO chunks (id, document_id, user_id, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
			entry.ChunkID, entry.DocumentID, namespace, entry.Index,
			entry.Content, pgvector.NewVector(entry.Embedding))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting chunk vectors: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, namespace string, embedding []float32, limit int, opts ...QueryOption) ([]Match, error) {
	if len(embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	cfg := buildQueryConfig(opts)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, document_id, chunk_index, content, embedding <-> $1 AS distance
		FROM chunks
		WHERE user_id = $2`
	args := []any{pgvector.NewVector(embedding), namespace}
	if cfg.documentID != nil {
		query += ` AND document_id = $3`
		args = append(args, *cfg.documentID)
	}
	query += fmt.Sprintf(` ORDER BY distance LIMIT %d`, limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Warn("vector query timed out", "namespace", namespace)
		}
		return nil, fmt.Errorf("querying chunk vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ChunkID, &m.DocumentID, &m.Index, &m.Content, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Similarity = Similarity(m.Distance)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading matches: %w", err)
	}
	return matches, nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, namespace string, docID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM chunks WHERE user_id = $1 AND document_id = $2`,
		namespace, docID)
	if err != nil {
		return fmt.Errorf("deleting chunk vectors: %w", err)
	}
	p.logger.Debug("deleted chunk vectors", "document_id", docID, "count", tag.RowsAffected())
	return nil
}

func (p *Postgres) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE user_id = $1`, namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunk vectors: %w", err)
	}
	return count, nil
}

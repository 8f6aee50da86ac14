package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsage/docsage/internal/document"
)

// Postgres implements Store over the documents table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres store over an existing pool.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

const documentColumns = `id, user_id, name, type, size_bytes, status, chunk_count, error_message, description, tags, created_at, updated_at`

func scanDocument(row pgx.Row) (document.Document, error) {
	var doc document.Document
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.Type, &doc.SizeBytes,
		&doc.Status, &doc.ChunkCount, &doc.ErrorMessage, &doc.Description, &doc.Tags,
		&doc.CreatedAt, &doc.UpdatedAt)
	return doc, err
}

func (p *Postgres) Create(ctx context.Context, doc document.Document) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO documents (id, user_id, name, type, size_bytes, status, chunk_count, error_message, description, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID, doc.UserID, doc.Name, doc.Type, doc.SizeBytes, doc.Status,
		doc.ChunkCount, doc.ErrorMessage, doc.Description, tags)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, userID string, id uuid.UUID) (document.Document, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = $1 AND id = $2`,
		userID, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("fetching document: %w", err)
	}
	return doc, nil
}

func (p *Postgres) List(ctx context.Context, userID string, filter ListFilter) ([]document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		query += fmt.Sprintf(" AND $%d = ANY (tags)", len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	return docs, nil
}

func (p *Postgres) SetProcessed(ctx context.Context, id uuid.UUID, chunkCount int) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, chunk_count = $2, error_message = '', updated_at = now()
		WHERE id = $3`,
		document.StatusProcessed, chunkCount, id)
	if err != nil {
		return fmt.Errorf("marking document processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, error_message = $2, updated_at = now()
		WHERE id = $3`,
		document.StatusFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("marking document failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.logger.Debug("document deleted", "document_id", id)
	return nil
}

func (p *Postgres) Stats(ctx context.Context, userID string) (Stats, error) {
	var s Stats
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3),
		       COALESCE(SUM(chunk_count), 0)
		FROM documents WHERE user_id = $1`,
		userID, document.StatusProcessed, document.StatusFailed).
		Scan(&s.Documents, &s.Processed, &s.Failed, &s.TotalChunks)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregating document stats: %w", err)
	}
	return s, nil
}

// Package vectorindex stores chunk embeddings in per-user namespaces
// and answers nearest-neighbour queries over them.
//
// Two implementations are provided: Postgres (pgvector) for production
// and Memory for tests and standalone mode. Both scope every operation
// to a namespace, so one user's vectors are invisible to another's
// queries by construction.
package vectorindex

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyEmbedding is returned for queries with a zero-length vector.
var ErrEmptyEmbedding = errors.New("empty query embedding")

// Entry is one embedded chunk to be stored.
type Entry struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Content    string
	Embedding  []float32
}

// Match is one query result, nearest first. Distance is the L2
// distance reported by the index; Similarity its 1/(1+d) transform.
type Match struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Content    string
	Distance   float64
	Similarity float64
}

// Index is the vector store capability consumed by the retriever and
// the ingestion pipeline.
type Index interface {
	// Upsert stores entries under the namespace, replacing any entry
	// with the same chunk ID.
	Upsert(ctx context.Context, namespace string, entries []Entry) error

	// Query returns up to limit matches ordered by ascending distance.
	// An unknown namespace yields an empty result, not an error.
	Query(ctx context.Context, namespace string, embedding []float32, limit int, opts ...QueryOption) ([]Match, error)

	// DeleteDocument removes every entry belonging to the document.
	DeleteDocument(ctx context.Context, namespace string, docID uuid.UUID) error

	// Count reports how many entries the namespace holds.
	Count(ctx context.Context, namespace string) (int, error)
}

// QueryOption customizes a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	documentID *uuid.UUID
}

// WithDocument restricts matches to a single document.
func WithDocument(docID uuid.UUID) QueryOption {
	return func(c *queryConfig) {
		c.documentID = &docID
	}
}

func buildQueryConfig(opts []QueryOption) queryConfig {
	var cfg queryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Similarity converts an L2 distance to a score in (0, 1], identical
// vectors scoring 1.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

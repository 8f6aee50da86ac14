// Package storage persists document metadata. Vectors live in the
// vector index; this store only tracks the documents themselves and
// their pipeline status.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/document"
)

// ErrNotFound is returned when a document does not exist for the user.
// Lookups never reveal whether the ID exists under another user.
var ErrNotFound = errors.New("document not found")

// Stats summarizes one user's corpus.
type Stats struct {
	Documents   int
	Processed   int
	Failed      int
	TotalChunks int
}

// ListFilter narrows List results. The zero value matches every
// document; set fields combine with AND.
type ListFilter struct {
	Status document.Status
	Type   document.Type
	Tag    string
}

// Matches reports whether the document satisfies the filter.
func (f ListFilter) Matches(doc document.Document) bool {
	if f.Status != "" && doc.Status != f.Status {
		return false
	}
	if f.Type != "" && doc.Type != f.Type {
		return false
	}
	if f.Tag != "" && !doc.HasTag(f.Tag) {
		return false
	}
	return true
}

// Store is the document metadata persistence capability.
type Store interface {
	// Create inserts a new document row.
	Create(ctx context.Context, doc document.Document) error

	// Get returns the user's document or ErrNotFound.
	Get(ctx context.Context, userID string, id uuid.UUID) (document.Document, error)

	// List returns the user's documents matching the filter, newest
	// first.
	List(ctx context.Context, userID string, filter ListFilter) ([]document.Document, error)

	// SetProcessed marks the document processed with its chunk count.
	SetProcessed(ctx context.Context, id uuid.UUID, chunkCount int) error

	// SetFailed marks the document failed and records the reason.
	SetFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	// Delete removes the user's document or returns ErrNotFound.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// Stats aggregates counts over the user's documents.
	Stats(ctx context.Context, userID string) (Stats, error)
}

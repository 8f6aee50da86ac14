package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/document"
)

// Memory is an in-process Store for tests and standalone mode.
type Memory struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]document.Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[uuid.UUID]document.Document)}
}

func (m *Memory) Create(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	m.docs[doc.ID] = doc
	return nil
}

func (m *Memory) Get(ctx context.Context, userID string, id uuid.UUID) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok || doc.UserID != userID {
		return document.Document{}, ErrNotFound
	}
	return doc, nil
}

func (m *Memory) List(ctx context.Context, userID string, filter ListFilter) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []document.Document
	for _, doc := range m.docs {
		if doc.UserID == userID && filter.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (m *Memory) SetProcessed(ctx context.Context, id uuid.UUID, chunkCount int) error {
	return m.update(ctx, id, func(doc *document.Document) {
		doc.Status = document.StatusProcessed
		doc.ChunkCount = chunkCount
		doc.ErrorMessage = ""
	})
}

func (m *Memory) SetFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return m.update(ctx, id, func(doc *document.Document) {
		doc.Status = document.StatusFailed
		doc.ErrorMessage = errorMessage
	})
}

func (m *Memory) update(ctx context.Context, id uuid.UUID, apply func(*document.Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	apply(&doc)
	doc.UpdatedAt = time.Now()
	m.docs[id] = doc
	return nil
}

func (m *Memory) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *Memory) Stats(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	for _, doc := range m.docs {
		if doc.UserID != userID {
			continue
		}
		s.Documents++
		switch doc.Status {
		case document.StatusProcessed:
			s.Processed++
			s.TotalChunks += doc.ChunkCount
		case document.StatusFailed:
			s.Failed++
		}
	}
	return s, nil
}

package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Index backed by per-namespace slices. Exact
// L2 scan; fine for tests and small standalone corpora.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string][]Entry
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string][]Entry)}
}

func (m *Memory) Upsert(ctx context.Context, namespace string, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.namespaces[namespace]
	for _, entry := range entries {
		replaced := false
		for i := range existing {
			if existing[i].ChunkID == entry.ChunkID {
				existing[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, entry)
		}
	}
	m.namespaces[namespace] = existing
	return nil
}

func (m *Memory) Query(ctx context.Context, namespace string, embedding []float32, limit int, opts ...QueryOption) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	cfg := buildQueryConfig(opts)

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.namespaces[namespace]
	matches := make([]Match, 0, len(entries))
	for _, entry := range entries {
		if cfg.documentID != nil && entry.DocumentID != *cfg.documentID {
			continue
		}
		d := l2Distance(embedding, entry.Embedding)
		matches = append(matches, Match{
			ChunkID:    entry.ChunkID,
			DocumentID: entry.DocumentID,
			Index:      entry.Index,
			Content:    entry.Content,
			Distance:   d,
			Similarity: Similarity(d),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, namespace string, docID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.namespaces[namespace]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.DocumentID != docID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(m.namespaces, namespace)
		return nil
	}
	m.namespaces[namespace] = kept
	return nil
}

func (m *Memory) Count(ctx context.Context, namespace string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace]), nil
}

// l2Distance computes the Euclidean distance between two vectors.
// Mismatched dimensions score as infinitely far rather than erroring,
// matching pgvector's refusal to compare them.
func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

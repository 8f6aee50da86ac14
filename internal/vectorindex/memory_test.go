package vectorindex

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func entry(docID uuid.UUID, index int, content string, vec []float32) Entry {
	return Entry{
		ChunkID:    uuid.New(),
		DocumentID: docID,
		Index:      index,
		Content:    content,
		Embedding:  vec,
	}
}

func TestMemoryQueryOrdering(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docID := uuid.New()

	err := idx.Upsert(ctx, "user-1", []Entry{
		entry(docID, 0, "far", []float32{10, 0, 0}),
		entry(docID, 1, "near", []float32{1, 0, 0}),
		entry(docID, 2, "exact", []float32{0, 0, 0}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := idx.Query(ctx, "user-1", []float32{0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Content != "exact" || matches[1].Content != "near" || matches[2].Content != "far" {
		t.Errorf("wrong order: %q, %q, %q", matches[0].Content, matches[1].Content, matches[2].Content)
	}
	if matches[0].Similarity != 1.0 {
		t.Errorf("identical vector similarity = %v, want 1.0", matches[0].Similarity)
	}
	if got, want := matches[1].Similarity, 1.0/(1.0+1.0); math.Abs(got-want) > 1e-9 {
		t.Errorf("similarity = %v, want %v", got, want)
	}
}

func TestMemoryQueryLimit(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docID := uuid.New()

	var entries []Entry
	for i := 0; i < 20; i++ {
		entries = append(entries, entry(docID, i, "c", []float32{float32(i)}))
	}
	if err := idx.Upsert(ctx, "u", entries); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := idx.Query(ctx, "u", []float32{0}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 5 {
		t.Errorf("expected 5 matches, got %d", len(matches))
	}
}

func TestMemoryNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	if err := idx.Upsert(ctx, "alice", []Entry{entry(uuid.New(), 0, "alice data", []float32{1})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := idx.Upsert(ctx, "bob", []Entry{entry(uuid.New(), 0, "bob data", []float32{1})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := idx.Query(ctx, "alice", []float32{1}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, m := range matches {
		if m.Content != "alice data" {
			t.Errorf("alice query surfaced %q", m.Content)
		}
	}

	matches, err = idx.Query(ctx, "nobody", []float32{1}, 10)
	if err != nil {
		t.Fatalf("query unknown namespace: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("unknown namespace returned %d matches", len(matches))
	}
}

func TestMemoryDocumentFilter(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docA, docB := uuid.New(), uuid.New()

	err := idx.Upsert(ctx, "u", []Entry{
		entry(docA, 0, "from a", []float32{1}),
		entry(docB, 0, "from b", []float32{1}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := idx.Query(ctx, "u", []float32{1}, 10, WithDocument(docA))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].Content != "from a" {
		t.Errorf("document filter failed: %+v", matches)
	}
}

func TestMemoryDeleteDocument(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docA, docB := uuid.New(), uuid.New()

	err := idx.Upsert(ctx, "u", []Entry{
		entry(docA, 0, "a0", []float32{1}),
		entry(docA, 1, "a1", []float32{2}),
		entry(docB, 0, "b0", []float32{3}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := idx.DeleteDocument(ctx, "u", docA); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := idx.Count(ctx, "u")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining entry, got %d", count)
	}

	matches, err := idx.Query(ctx, "u", []float32{1}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, m := range matches {
		if m.DocumentID == docA {
			t.Error("deleted document still matched")
		}
	}
}

func TestMemoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docID := uuid.New()
	e := entry(docID, 0, "old", []float32{1})

	if err := idx.Upsert(ctx, "u", []Entry{e}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e.Content = "new"
	if err := idx.Upsert(ctx, "u", []Entry{e}); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}

	count, _ := idx.Count(ctx, "u")
	if count != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", count)
	}
	matches, _ := idx.Query(ctx, "u", []float32{1}, 1)
	if matches[0].Content != "new" {
		t.Errorf("expected replaced content, got %q", matches[0].Content)
	}
}

func TestMemoryEmptyEmbedding(t *testing.T) {
	idx := NewMemory()
	_, err := idx.Query(context.Background(), "u", nil, 5)
	if !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("expected ErrEmptyEmbedding, got %v", err)
	}
}

func TestMemoryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	docID := uuid.New()

	err := idx.Upsert(ctx, "u", []Entry{
		entry(docID, 0, "match", []float32{1, 1}),
		entry(docID, 1, "mismatch", []float32{1, 1, 1}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := idx.Query(ctx, "u", []float32{1, 1}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if matches[0].Content != "match" {
		t.Errorf("mismatched dimensions ranked first: %+v", matches[0])
	}
	if !math.IsInf(matches[1].Distance, 1) {
		t.Errorf("mismatched dimensions distance = %v, want +Inf", matches[1].Distance)
	}
}

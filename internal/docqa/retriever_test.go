package docqa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/document"
	"github.com/docsage/docsage/internal/log"
	"github.com/docsage/docsage/internal/provider"
	"github.com/docsage/docsage/internal/storage"
	"github.com/docsage/docsage/internal/testutil"
	"github.com/docsage/docsage/internal/vectorindex"
)

// seedIndex stores chunks with explicit one-dimensional embeddings so
// distances to the zero-vector question are exact.
func seedIndex(t *testing.T, idx vectorindex.Index, userID string, docID uuid.UUID, positions map[string]float32) {
	t.Helper()
	var entries []vectorindex.Entry
	i := 0
	for content, pos := range positions {
		entries = append(entries, vectorindex.Entry{
			ChunkID:    uuid.New(),
			DocumentID: docID,
			Index:      i,
			Content:    content,
			Embedding:  []float32{pos},
		})
		i++
	}
	if err := idx.Upsert(context.Background(), userID, entries); err != nil {
		t.Fatalf("seeding index: %v", err)
	}
}

func TestRetrieveFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	idx := vectorindex.NewMemory()
	store := storage.NewMemory()
	embedder := testutil.NewEmbedder(1)
	embedder.SetVector("the question", []float32{0})

	docID := uuid.New()
	if err := store.Create(ctx, document.Document{ID: docID, UserID: "u", Name: "doc.txt"}); err != nil {
		t.Fatal(err)
	}
	// Similarity = 1/(1+d): 0.1 -> 0.909, 0.2 -> 0.833, 1.0 -> 0.5.
	seedIndex(t, idx, "u", docID, map[string]float32{
		"near":    0.2,
		"nearest": 0.1,
		"far":     1.0,
	})

	r := NewRetriever(embedder, idx, store, 0.7, log.NewNop())
	chunks, err := r.Retrieve(ctx, "u", "the question", 5)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks above the floor, got %d", len(chunks))
	}
	if chunks[0].Content != "nearest" || chunks[1].Content != "near" {
		t.Errorf("wrong order: %q, %q", chunks[0].Content, chunks[1].Content)
	}
	if chunks[0].Similarity <= chunks[1].Similarity {
		t.Error("similarities not descending")
	}
	if chunks[0].DocumentName != "doc.txt" {
		t.Errorf("document name not resolved: %q", chunks[0].DocumentName)
	}
}

func TestRetrieveLimit(t *testing.T) {
	ctx := context.Background()
	idx := vectorindex.NewMemory()
	store := storage.NewMemory()
	embedder := testutil.NewEmbedder(1)
	embedder.SetVector("q", []float32{0})

	docID := uuid.New()
	if err := store.Create(ctx, document.Document{ID: docID, UserID: "u", Name: "doc.txt"}); err != nil {
		t.Fatal(err)
	}
	seedIndex(t, idx, "u", docID, map[string]float32{
		"a": 0.01, "b": 0.02, "c": 0.03, "d": 0.04,
	})

	r := NewRetriever(embedder, idx, store, 0.7, log.NewNop())
	chunks, err := r.Retrieve(ctx, "u", "q", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestRetrieveDocumentScope(t *testing.T) {
	ctx := context.Background()
	idx := vectorindex.NewMemory()
	store := storage.NewMemory()
	embedder := testutil.NewEmbedder(1)
	embedder.SetVector("q", []float32{0})

	reportID, notesID := uuid.New(), uuid.New()
	for id, name := range map[uuid.UUID]string{reportID: "report.txt", notesID: "notes.txt"} {
		if err := store.Create(ctx, document.Document{ID: id, UserID: "u", Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	// The chunk in notes.txt is closer than anything in report.txt.
	seedIndex(t, idx, "u", notesID, map[string]float32{"notes chunk": 0.05})
	seedIndex(t, idx, "u", reportID, map[string]float32{"report chunk": 0.2})

	r := NewRetriever(embedder, idx, store, 0.7, log.NewNop())
	chunks, err := r.Retrieve(ctx, "u", "q", 5, WithDocument(reportID))
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected only the scoped document's chunk, got %d", len(chunks))
	}
	if chunks[0].DocumentID != reportID || chunks[0].Content != "report chunk" {
		t.Errorf("scoped retrieval returned %+v", chunks[0])
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	r := NewRetriever(testutil.NewEmbedder(1), vectorindex.NewMemory(), storage.NewMemory(), 0.7, log.NewNop())

	chunks, err := r.Retrieve(context.Background(), "nobody", "anything", 5)
	if err != nil {
		t.Fatalf("empty corpus should not error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestRetrieveNothingAboveFloor(t *testing.T) {
	ctx := context.Background()
	idx := vectorindex.NewMemory()
	store := storage.NewMemory()
	embedder := testutil.NewEmbedder(1)
	embedder.SetVector("q", []float32{0})

	docID := uuid.New()
	if err := store.Create(ctx, document.Document{ID: docID, UserID: "u", Name: "doc.txt"}); err != nil {
		t.Fatal(err)
	}
	seedIndex(t, idx, "u", docID, map[string]float32{"distant": 5.0})

	r := NewRetriever(embedder, idx, store, 0.7, log.NewNop())
	chunks, err := r.Retrieve(ctx, "u", "q", 5)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks above the floor, got %d", len(chunks))
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	embedder := testutil.NewEmbedder(1)
	embedder.FailWith(provider.ErrEmbeddingUnavailable)
	r := NewRetriever(embedder, vectorindex.NewMemory(), storage.NewMemory(), 0.7, log.NewNop())

	_, err := r.Retrieve(context.Background(), "u", "q", 5)
	if !errors.Is(err, provider.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

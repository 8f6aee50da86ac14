package docqa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/provider"
	"github.com/docsage/docsage/internal/storage"
	"github.com/docsage/docsage/internal/vectorindex"
)

// maxCandidates caps the over-fetch from the index regardless of the
// requested result count.
const maxCandidates = 50

// overFetchFactor controls how many candidates are pulled before the
// similarity floor is applied; filtering after the ANN query keeps
// recall up when many near matches fall below the floor.
const overFetchFactor = 3

// RetrieveOption narrows a retrieval.
type RetrieveOption func(*retrieveConfig)

type retrieveConfig struct {
	documentID *uuid.UUID
}

// WithDocument restricts retrieval to chunks of a single document. The
// user-namespace restriction still applies on top.
func WithDocument(id uuid.UUID) RetrieveOption {
	return func(c *retrieveConfig) {
		c.documentID = &id
	}
}

// RetrievedChunk is one chunk that survived the similarity floor,
// enriched with its document's name.
type RetrievedChunk struct {
	DocumentID   uuid.UUID
	DocumentName string
	ChunkIndex   int
	Content      string
	Similarity   float64
}

// Retriever embeds a question and finds the user's most relevant
// chunks.
type Retriever struct {
	embedder  provider.Embedder
	index     vectorindex.Index
	store     storage.Store
	threshold float64
	logger    *slog.Logger
}

// NewRetriever wires the retrieval path. threshold <= 0 selects the
// default similarity floor.
func NewRetriever(embedder provider.Embedder, index vectorindex.Index, store storage.Store, threshold float64, logger *slog.Logger) *Retriever {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		store:     store,
		threshold: threshold,
		logger:    logger,
	}
}

// Retrieve returns up to limit chunks above the similarity floor,
// best first. An empty corpus or nothing above the floor yields an
// empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, userID, question string, limit int, opts ...RetrieveOption) ([]RetrievedChunk, error) {
	var cfg retrieveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: empty question embedding", provider.ErrEmbeddingUnavailable)
	}

	candidates := limit * overFetchFactor
	if candidates > maxCandidates {
		candidates = maxCandidates
	}

	var queryOpts []vectorindex.QueryOption
	if cfg.documentID != nil {
		queryOpts = append(queryOpts, vectorindex.WithDocument(*cfg.documentID))
	}

	matches, err := r.index.Query(ctx, userID, vectors[0], candidates, queryOpts...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	names, err := r.documentNames(ctx, userID, matches)
	if err != nil {
		return nil, err
	}

	// Matches arrive ordered by ascending distance, i.e. descending
	// similarity; the floor filter preserves that order.
	var chunks []RetrievedChunk
	for _, m := range matches {
		if m.Similarity < r.threshold {
			continue
		}
		chunks = append(chunks, RetrievedChunk{
			DocumentID:   m.DocumentID,
			DocumentName: names[m.DocumentID],
			ChunkIndex:   m.Index,
			Content:      m.Content,
			Similarity:   m.Similarity,
		})
		if len(chunks) == limit {
			break
		}
	}

	r.logger.Debug("retrieval complete",
		"candidates", len(matches), "kept", len(chunks), "threshold", r.threshold)
	return chunks, nil
}

// documentNames resolves the names of every document referenced by the
// matches in one listing pass.
func (r *Retriever) documentNames(ctx context.Context, userID string, matches []vectorindex.Match) (map[uuid.UUID]string, error) {
	docs, err := r.store.List(ctx, userID, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("resolving document names: %w", err)
	}
	names := make(map[uuid.UUID]string, len(docs))
	for _, doc := range docs {
		names[doc.ID] = doc.Name
	}
	for _, m := range matches {
		if _, ok := names[m.DocumentID]; !ok {
			names[m.DocumentID] = "unknown document"
		}
	}
	return names, nil
}

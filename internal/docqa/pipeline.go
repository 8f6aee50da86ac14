package docqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docsage/docsage/internal/chunk"
	"github.com/docsage/docsage/internal/document"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/provider"
	"github.com/docsage/docsage/internal/storage"
	"github.com/docsage/docsage/internal/vectorindex"
)

// cleanupTimeout bounds the rollback and status writes that run after
// a pipeline failure, on their own context.
const cleanupTimeout = 15 * time.Second

// Pipeline runs document ingestion: extract, chunk, embed, index.
type Pipeline struct {
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	embedder  provider.Embedder
	index     vectorindex.Index
	store     storage.Store
	cfg       Config
	logger    *slog.Logger
}

// NewPipeline wires the ingestion path.
func NewPipeline(extractor *extract.Extractor, chunker *chunk.Chunker, embedder provider.Embedder,
	index vectorindex.Index, store storage.Store, cfg Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		store:     store,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Process ingests one document whose metadata row already exists with
// status processing. It runs detached from the caller's cancellation
// under its own timeout: a dropped request must not leave a document
// stuck in processing.
//
// On failure any vectors already written are removed, the document is
// marked failed with the reason, and the error is returned.
func (p *Pipeline) Process(ctx context.Context, doc document.Document, data []byte) error {
	ctx = context.WithoutCancel(ctx)
	runCtx, cancel := context.WithTimeout(ctx, p.cfg.PipelineTimeout)
	defer cancel()

	err := p.run(runCtx, doc, data)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %v", ErrPipelineTimeout, p.cfg.PipelineTimeout, err)
	}

	p.cleanup(ctx, doc, err)
	return err
}

func (p *Pipeline) run(ctx context.Context, doc document.Document, data []byte) error {
	start := time.Now()

	text, err := p.extractor.Extract(doc.Type, data)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", doc.Name, err)
	}

	chunks := p.chunker.Split(doc.ID, text)
	if len(chunks) == 0 {
		return fmt.Errorf("extracting %s: %w", doc.Name, extract.ErrUnsupportedOrCorrupt)
	}

	entries := make([]vectorindex.Entry, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EmbedConcurrency)
	for i, ch := range chunks {
		g.Go(func() error {
			vectors, err := p.embedder.Embed(gctx, []string{ch.Content})
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", ch.Index, err)
			}
			if len(vectors) == 0 {
				return fmt.Errorf("embedding chunk %d: %w", ch.Index, provider.ErrEmbeddingUnavailable)
			}
			entries[i] = vectorindex.Entry{
				ChunkID:    ch.ID,
				DocumentID: ch.DocumentID,
				Index:      ch.Index,
				Content:    ch.Content,
				Embedding:  vectors[0],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := p.index.Upsert(ctx, doc.UserID, entries); err != nil {
		return fmt.Errorf("indexing %s: %w", doc.Name, err)
	}

	if err := p.store.SetProcessed(ctx, doc.ID, len(chunks)); err != nil {
		return fmt.Errorf("finalizing %s: %w", doc.Name, err)
	}

	p.logger.Info("document processed",
		"document_id", doc.ID, "name", doc.Name,
		"chunks", len(chunks), "elapsed", time.Since(start))
	return nil
}

// cleanup removes partial state after a failed run. Best effort: a
// failing rollback is logged, never returned, so the original failure
// stays visible to the caller.
func (p *Pipeline) cleanup(ctx context.Context, doc document.Document, cause error) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	if err := p.index.DeleteDocument(ctx, doc.UserID, doc.ID); err != nil {
		p.logger.Error("rollback of chunk vectors failed",
			"document_id", doc.ID, "error", err)
	}
	if err := p.store.SetFailed(ctx, doc.ID, cause.Error()); err != nil {
		p.logger.Error("failed to record document failure",
			"document_id", doc.ID, "error", err)
	}

	p.logger.Warn("document processing failed",
		"document_id", doc.ID, "name", doc.Name, "error", cause)
}

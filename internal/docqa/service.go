// Package docqa implements retrieval-augmented question answering over
// a user's uploaded documents: ingestion, retrieval, classification and
// answer synthesis behind one service facade.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/chunk"
	"github.com/docsage/docsage/internal/document"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/provider"
	"github.com/docsage/docsage/internal/storage"
	"github.com/docsage/docsage/internal/vectorindex"
)

// ErrEmptyQuestion rejects blank Ask and Search inputs.
var ErrEmptyQuestion = errors.New("question must not be empty")

// searchExcerptChars bounds excerpts in raw search results.
const searchExcerptChars = 200

// UploadOption attaches optional metadata to an upload.
type UploadOption func(*uploadConfig)

type uploadConfig struct {
	description string
	tags        []string
}

// WithDescription sets the document's free-text description.
func WithDescription(description string) UploadOption {
	return func(c *uploadConfig) {
		c.description = description
	}
}

// WithTags attaches tags to the document. Blank tags are dropped.
func WithTags(tags ...string) UploadOption {
	return func(c *uploadConfig) {
		for _, tag := range tags {
			if t := strings.TrimSpace(tag); t != "" {
				c.tags = append(c.tags, t)
			}
		}
	}
}

// SearchResult is one raw retrieval hit, without synthesis.
type SearchResult struct {
	DocumentID   uuid.UUID
	DocumentName string
	ChunkIndex   int
	Excerpt      string
	Similarity   float64
}

// Service is the document question-answering facade. All operations
// are scoped to a user; no call can observe another user's data.
type Service struct {
	store     storage.Store
	index     vectorindex.Index
	extractor *extract.Extractor
	pipeline  *Pipeline
	retriever *Retriever
	synth     *Synthesizer
	cfg       Config
	logger    *slog.Logger
}

// NewService wires the full pipeline from its collaborators.
func NewService(store storage.Store, index vectorindex.Index, embedder provider.Embedder,
	generator provider.Generator, extractor *extract.Extractor, chunker *chunk.Chunker,
	cfg Config, logger *slog.Logger) *Service {

	cfg = cfg.withDefaults()
	return &Service{
		store:     store,
		index:     index,
		extractor: extractor,
		pipeline:  NewPipeline(extractor, chunker, embedder, index, store, cfg, logger),
		retriever: NewRetriever(embedder, index, store, cfg.SimilarityThreshold, logger),
		synth:     NewSynthesizer(generator, cfg, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Upload validates and ingests one document. Validation failures
// reject the request before anything is persisted; pipeline failures
// leave the document in the failed state and are returned alongside
// its metadata.
func (s *Service) Upload(ctx context.Context, userID, filename string, data []byte, opts ...UploadOption) (document.Document, error) {
	docType, err := s.validateUpload(userID, filename, data)
	if err != nil {
		return document.Document{}, err
	}
	var cfg uploadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	doc := document.Document{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        filename,
		Type:        docType,
		SizeBytes:   int64(len(data)),
		Status:      document.StatusProcessing,
		Description: cfg.description,
		Tags:        cfg.tags,
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return document.Document{}, fmt.Errorf("persisting document: %w", err)
	}

	if err := s.pipeline.Process(ctx, doc, data); err != nil {
		if failed, getErr := s.store.Get(ctx, userID, doc.ID); getErr == nil {
			return failed, err
		}
		doc.Status = document.StatusFailed
		doc.ErrorMessage = err.Error()
		return doc, err
	}

	processed, err := s.store.Get(ctx, userID, doc.ID)
	if err != nil {
		return doc, fmt.Errorf("reloading document: %w", err)
	}
	return processed, nil
}

func (s *Service) validateUpload(userID, filename string, data []byte) (document.Type, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: missing user", ErrInvalidUpload)
	}
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: missing filename", ErrInvalidUpload)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	docType, ok := document.ParseType(ext)
	if !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidUpload, ext)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if int64(len(data)) > s.extractor.MaxSize() {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), s.extractor.MaxSize())
	}
	return docType, nil
}

// Ask answers a question from the user's documents. WithDocument
// narrows retrieval to one document. A user with no relevant documents
// gets the fixed no-results answer, empty sources and zero confidence;
// that is not an error.
func (s *Service) Ask(ctx context.Context, userID, question string, opts ...RetrieveOption) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, ErrEmptyQuestion
	}

	qType := Classify(question)
	chunks, err := s.retriever.Retrieve(ctx, userID, question, s.cfg.MaxChunks, opts...)
	if err != nil {
		return Answer{}, err
	}

	answer := s.synth.Synthesize(ctx, question, qType, chunks)
	s.logger.Info("question answered",
		"user", userID, "type", qType,
		"sources", len(answer.Sources), "confidence", answer.Confidence,
		"generated", answer.Generated)
	return answer, nil
}

// Search returns raw retrieval results without synthesis. limit is
// clamped to the configured maximum; limit <= 0 selects the maximum.
// WithDocument narrows the search to one document.
func (s *Service) Search(ctx context.Context, userID, query string, limit int, opts ...RetrieveOption) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuestion
	}
	if limit <= 0 || limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	chunks, err := s.retriever.Retrieve(ctx, userID, query, limit, opts...)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(chunks))
	for i, ch := range chunks {
		results[i] = SearchResult{
			DocumentID:   ch.DocumentID,
			DocumentName: ch.DocumentName,
			ChunkIndex:   ch.ChunkIndex,
			Excerpt:      excerptOf(ch.Content, searchExcerptChars),
			Similarity:   ch.Similarity,
		}
	}
	return results, nil
}

// Get returns one of the user's documents.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (document.Document, error) {
	return s.store.Get(ctx, userID, id)
}

// ListDocuments returns the user's documents matching the filter,
// newest first. A zero filter lists everything.
func (s *Service) ListDocuments(ctx context.Context, userID string, filter storage.ListFilter) ([]document.Document, error) {
	return s.store.List(ctx, userID, filter)
}

// DeleteDocument removes a document and all its vectors. Vectors go
// first so a failure can never leave orphaned vectors behind a deleted
// metadata row.
func (s *Service) DeleteDocument(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.store.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.index.DeleteDocument(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting document vectors: %w", err)
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "user", userID, "document_id", id)
	return nil
}

// Stats aggregates the user's corpus counters.
func (s *Service) Stats(ctx context.Context, userID string) (storage.Stats, error) {
	return s.store.Stats(ctx, userID)
}

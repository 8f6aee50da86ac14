package docqa

import (
	"errors"

	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/storage"
)

var (
	// ErrInvalidUpload rejects malformed upload requests (missing name,
	// unsupported extension, empty payload) before anything is persisted.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrPipelineTimeout is returned when document processing exceeds
	// its deadline. The document is left in the failed state.
	ErrPipelineTimeout = errors.New("document processing timed out")

	// ErrNotFound mirrors the storage sentinel so callers only need
	// this package's taxonomy.
	ErrNotFound = storage.ErrNotFound

	// ErrFileTooLarge mirrors the extraction sentinel.
	ErrFileTooLarge = extract.ErrFileTooLarge

	// ErrUnsupportedOrCorruptFile mirrors the extraction sentinel.
	ErrUnsupportedOrCorruptFile = extract.ErrUnsupportedOrCorrupt
)

// Package document defines the core data model shared across the
// ingestion and question-answering pipeline.
package document

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies a supported upload format. The type is declared by
// the caller (usually derived from the filename extension); extraction
// validates that the bytes actually match.
type Type string

const (
	TypePDF  Type = "pdf"
	TypeTXT  Type = "txt"
	TypeMD   Type = "md"
	TypeDOCX Type = "docx"
)

// ParseType maps a file extension (without dot, case-insensitive at the
// call site) to a Type. Returns false for unsupported formats.
func ParseType(ext string) (Type, bool) {
	switch Type(ext) {
	case TypePDF, TypeTXT, TypeMD, TypeDOCX:
		return Type(ext), true
	default:
		return "", false
	}
}

// Status tracks a document through the ingestion pipeline.
type Status string

const (
	// StatusProcessing is set when metadata is persisted, before
	// extraction begins.
	StatusProcessing Status = "processing"

	// StatusProcessed means all chunks are embedded and indexed.
	StatusProcessed Status = "processed"

	// StatusFailed means the pipeline aborted; ErrorMessage explains why
	// and no vectors remain for the document.
	StatusFailed Status = "failed"
)

// Document is the persisted metadata for one upload. Content never
// lives here; extracted text flows through the pipeline and only chunk
// vectors are stored.
type Document struct {
	ID           uuid.UUID
	UserID       string
	Name         string
	Type         Type
	SizeBytes    int64
	Status       Status
	ChunkCount   int
	ErrorMessage string

	// Description and Tags are caller-supplied metadata; Tags also
	// drive list filtering.
	Description string
	Tags        []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTag reports whether the document carries the tag.
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Chunk is one overlapping window of a document's extracted text.
// Start and End are character offsets into the normalized text.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Content    string
	Start      int
	End        int
}

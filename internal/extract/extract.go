// Package extract converts uploaded file bytes into normalized plain
// text. Each supported format has its own extractor; dispatch happens
// on the declared document type, never on content sniffing.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/docsage/docsage/internal/document"
)

// DefaultMaxFileSize is the upload size ceiling in bytes (10 MiB).
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned before any parsing when the payload
	// exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrEmptyFile is returned for zero-length payloads.
	ErrEmptyFile = errors.New("file is empty")

	// ErrUnsupportedOrCorrupt is returned when the declared type is not
	// supported or the bytes cannot be parsed as that type, including
	// parses that yield no usable text.
	ErrUnsupportedOrCorrupt = errors.New("unsupported or corrupt file")
)

// Extractor dispatches uploads to per-format text extraction and
// normalizes the result.
type Extractor struct {
	maxFileSize int64
	logger      *slog.Logger
}

// New creates an Extractor. maxFileSize <= 0 selects DefaultMaxFileSize.
func New(maxFileSize int64, logger *slog.Logger) *Extractor {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Extractor{maxFileSize: maxFileSize, logger: logger}
}

// MaxSize reports the configured upload size limit in bytes.
func (e *Extractor) MaxSize() int64 { return e.maxFileSize }

// Extract returns the normalized plain text of data interpreted as the
// given type. The size gate runs before any parsing so oversized
// payloads never reach a parser.
func (e *Extractor) Extract(docType document.Type, data []byte) (string, error) {
	if int64(len(data)) > e.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), e.maxFileSize)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	var (
		text string
		err  error
	)
	switch docType {
	case document.TypePDF:
		text, err = extractPDF(data)
	case document.TypeTXT, document.TypeMD:
		text, err = extractPlain(data)
	case document.TypeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrUnsupportedOrCorrupt, docType)
	}
	if err != nil {
		e.logger.Debug("extraction failed", "type", docType, "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnsupportedOrCorrupt, err)
	}

	text = normalize(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content", ErrUnsupportedOrCorrupt)
	}
	return text, nil
}

// normalize collapses runs of spaces and tabs, strips carriage returns
// and trims the result. Single newlines are preserved so chunk
// boundaries can still prefer them; runs of blank lines collapse to
// one blank line.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	spacePending := false
	newlines := 0
	for _, r := range s {
		if r == '\n' {
			spacePending = false
			if newlines < 2 {
				b.WriteByte('\n')
			}
			newlines++
			continue
		}
		if unicode.IsSpace(r) {
			spacePending = true
			continue
		}
		newlines = 0
		if spacePending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		spacePending = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

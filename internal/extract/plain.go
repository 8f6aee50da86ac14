package extract

import (
	"errors"
	"unicode/utf8"
)

// extractPlain handles txt and md uploads. Markdown is treated as plain
// text: stripping its syntax would alter content rather than extract it.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("not valid UTF-8 text")
	}
	return string(content), nil
}

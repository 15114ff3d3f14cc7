// Package guard cleans user queries before they reach the pipeline.
package guard

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// DefaultMaxQuerySize is 4KB (conservative default).
const DefaultMaxQuerySize = 4096

var (
	ErrQueryTooLarge = errors.New("query exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("query contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips dangerous control
// characters. Rejections also match domain.ErrInvalidInput.
type Sanitizer struct {
	MaxSize int
}

// NewSanitizer creates a sanitizer. Non-positive limits mean DefaultMaxQuerySize.
func NewSanitizer(maxSize int) *Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxQuerySize
	}
	return &Sanitizer{MaxSize: maxSize}
}

// Clean returns the sanitized query.
func (s *Sanitizer) Clean(query string) (string, error) {
	// Reject rather than truncate so the stored query is what the user sent.
	if len(query) > s.MaxSize {
		return "", fmt.Errorf("%w: %w: size=%d limit=%d", domain.ErrInvalidInput, ErrQueryTooLarge, len(query), s.MaxSize)
	}
	if !utf8.ValidString(query) {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrInvalidUTF8)
	}

	// Fast path: nothing to strip.
	if strings.IndexFunc(query, isUnsafeControl) < 0 {
		return query, nil
	}

	var b strings.Builder
	b.Grow(len(query))
	for _, r := range query {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// isUnsafeControl keeps newline, tab and carriage return; ESC, NUL, BEL and friends go.
func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

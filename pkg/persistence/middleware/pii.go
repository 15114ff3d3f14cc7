package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and long digit runs such as phone or card numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d \-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of the patterns in the user
// visible text of a state (query, answers, history, short notes) before it is persisted.
// The in-memory state is left untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	cloned, err := state.Clone()
	if err != nil {
		return err
	}

	cloned.Query = m.mask(cloned.Query)
	maskPtr(cloned.FinalAnswer, m.mask)
	maskPtr(cloned.PartialAnswers.ExecutorResult, m.mask)
	for i := range cloned.SessionHistory {
		cloned.SessionHistory[i].Question = m.mask(cloned.SessionHistory[i].Question)
		cloned.SessionHistory[i].Answer = m.mask(cloned.SessionHistory[i].Answer)
	}
	for i := range cloned.ShortNotes {
		cloned.ShortNotes[i] = m.mask(cloned.ShortNotes[i])
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func maskPtr(s *string, mask func(string) string) {
	if s != nil {
		*s = mask(*s)
	}
}

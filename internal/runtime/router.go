package runtime

import (
	"context"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

type routeRule struct {
	class    string
	keywords []string
}

// routeRules are checked in order; the first rule with a matching keyword wins.
var routeRules = []routeRule{
	{class: domain.ClassCode, keywords: []string{"code", "implement", "function", "python", "javascript"}},
	{class: domain.ClassArchitecture, keywords: []string{"architecture", "design", "pattern", "mas"}},
	{class: domain.ClassConceptual, keywords: []string{"what is", "explain", "theory", "define", "concept"}},
}

// Classify maps a query to a classification type by substring matching on its lower-cased
// form. Queries matching no rule are ClassGeneral.
func Classify(query string) string {
	q := strings.ToLower(query)
	for _, r := range routeRules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.class
			}
		}
	}
	return domain.ClassGeneral
}

// Route is the router stage.
func (e *Engine) Route(ctx context.Context, s *domain.State) error {
	s.RecordAgent(domain.AgentRouter)

	class := Classify(s.Query)
	s.Classification = &domain.Classification{Type: class}
	e.logger.Debug("query classified", "type", class)
	return nil
}

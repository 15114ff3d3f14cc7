package runtime

import (
	"context"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Retrieve is the context retrieval stage and the gather_context step. Matching notes
// are joined with a blank line into rag_context; without a match rag_context is left as is.
func (e *Engine) Retrieve(ctx context.Context, s *domain.State) (string, error) {
	s.RecordAgent(domain.AgentRAGRetriever)

	notes := e.searchNotes(ctx, s.Query)
	if len(notes) == 0 {
		return "", nil
	}

	texts := make([]string, 0, len(notes))
	for _, n := range notes {
		texts = append(texts, n.Text)
	}
	joined := strings.Join(texts, "\n\n")

	s.SetRAGContext(joined)
	s.LongMemory = notes
	return joined, nil
}

package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

const formatterInstruction = "You are a formatting and style expert. Rewrite the response clearly, concisely and elegantly."

// contextSeparator introduces the retrieved context in simple answers.
const contextSeparator = "\n\n---\nContext:\n"

// Format is the formatter stage and the format_answer step. It sets the final answer,
// appends a session entry and writes an audit note of the exchange.
func (e *Engine) Format(ctx context.Context, s *domain.State) (string, error) {
	s.RecordAgent(domain.AgentFormatter)

	var answer string
	switch e.formatter {
	case FormatterGenerative:
		input := domain.EmptyAnswer
		if r := s.PartialAnswers.ExecutorResult; r != nil && *r != "" {
			input = *r
		}
		text, err := e.complete(ctx, domain.AgentFormatter, domain.UserRequest(formatterInstruction, input))
		if err != nil {
			return "", err
		}
		answer = text
	default:
		var b strings.Builder
		if r := s.PartialAnswers.ExecutorResult; r != nil {
			b.WriteString(*r)
		}
		if rc := ragContext(s); rc != "" {
			b.WriteString(contextSeparator)
			b.WriteString(rc)
		}
		answer = strings.TrimSpace(b.String())
	}

	if strings.TrimSpace(answer) == "" {
		answer = domain.EmptyAnswer
	}

	s.SetFinalAnswer(answer)
	s.AppendSessionEntry(s.Query, answer)

	note := fmt.Sprintf("QA: %s -> %s", s.Query, truncate(answer, domain.AuditAnswerLimit))
	if _, err := e.memory.Append(context.WithoutCancel(ctx), note, []string{domain.TagAuto}); err != nil {
		e.logger.Warn("failed to record audit note", "err", err)
	}
	return answer, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

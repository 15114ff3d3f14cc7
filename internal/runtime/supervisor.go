package runtime

import (
	"context"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Violates reports whether answer trips the safety policy. This is a plain substring
// test, so "unforbidden" matches too.
func Violates(answer string) bool {
	return strings.Contains(strings.ToLower(answer), domain.PolicyKeyword)
}

// Supervise is the terminal safety gate.
func (e *Engine) Supervise(ctx context.Context, s *domain.State) error {
	s.RecordAgent(domain.AgentSupervisor)

	if s.FinalAnswer != nil && Violates(*s.FinalAnswer) {
		e.logger.Warn("answer rejected by safety policy")
		s.SetFinalAnswer(domain.RejectionMessage)
	}
	return nil
}

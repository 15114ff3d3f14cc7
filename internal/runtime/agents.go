package runtime

import (
	"context"
	"fmt"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// agentSpec describes one specialized agent: who it is, where it writes and how it
// phrases its request.
type agentSpec struct {
	name        string
	key         domain.AgentKey
	instruction string
	prompt      func(s *domain.State) string
}

func ragContext(s *domain.State) string {
	if s.PartialAnswers.RAGContext == nil {
		return ""
	}
	return *s.PartialAnswers.RAGContext
}

var (
	technicalAgent = agentSpec{
		name:        domain.AgentTechnical,
		key:         domain.KeyTech,
		instruction: "You are a senior software engineer.",
		prompt: func(s *domain.State) string {
			return fmt.Sprintf("Query: %s\n\nContext: %s", s.Query, ragContext(s))
		},
	}

	geekAgent = agentSpec{
		name:        domain.AgentGeek,
		key:         domain.KeyGeek,
		instruction: "You are a science & media specialist.",
		prompt: func(s *domain.State) string {
			return fmt.Sprintf("Explain this: %s\n\nRelated notes: %s", s.Query, ragContext(s))
		},
	}

	generalAgent = agentSpec{
		name:        domain.AgentGeneral,
		key:         domain.KeyGeneral,
		instruction: "You are a helpful general-purpose assistant.",
		prompt: func(s *domain.State) string {
			if rc := ragContext(s); rc != "" {
				return fmt.Sprintf("%s\n\nContext: %s", s.Query, rc)
			}
			return s.Query
		},
	}

	architectureAgent = agentSpec{
		name:        domain.AgentArchitecture,
		key:         domain.KeyArchitecture,
		instruction: "You are a software architect specialized in multi-agent systems. Describe components, responsibilities and data flow.",
		prompt: func(s *domain.State) string {
			return fmt.Sprintf("Design request: %s\n\nContext: %s", s.Query, ragContext(s))
		},
	}

	codeAgent = agentSpec{
		name:        domain.AgentCode,
		key:         domain.KeyCode,
		instruction: "You are a code generation agent. Return working code with brief comments.",
		prompt: func(s *domain.State) string {
			return fmt.Sprintf("Task: %s\n\nContext: %s", s.Query, ragContext(s))
		},
	}

	testAgent = agentSpec{
		name:        domain.AgentTest,
		key:         domain.KeyTests,
		instruction: "You are a test engineer. Write unit tests for the given code.",
		prompt: func(s *domain.State) string {
			code, _ := s.PartialAnswers.Extra.Output(domain.KeyCode)
			return fmt.Sprintf("Task: %s\n\nCode:\n%s", s.Query, code)
		},
	}
)

// runAgent logs the agent, asks the completion service and stores the raw text in the
// agent's Extra slot. Failures propagate.
func (e *Engine) runAgent(ctx context.Context, s *domain.State, spec agentSpec) (string, error) {
	s.RecordAgent(spec.name)

	text, err := e.complete(ctx, spec.name, domain.UserRequest(spec.instruction, spec.prompt(s)))
	if err != nil {
		return "", err
	}
	s.PartialAnswers.Extra.SetOutput(spec.key, text)
	return text, nil
}

// agentStep adapts an agent to a plan step.
func (e *Engine) agentStep(spec agentSpec) StepHandler {
	return func(ctx context.Context, s *domain.State) (string, error) {
		return e.runAgent(ctx, s, spec)
	}
}

// runUnitTests asks the test agent for tests and returns the generated code followed by
// the tests, so the next step sees both.
func (e *Engine) runUnitTests(ctx context.Context, s *domain.State) (string, error) {
	tests, err := e.runAgent(ctx, s, testAgent)
	if err != nil {
		return "", err
	}
	code, ok := s.PartialAnswers.Extra.Output(domain.KeyCode)
	if !ok || code == "" {
		return tests, nil
	}
	return code + "\n\n" + tests, nil
}

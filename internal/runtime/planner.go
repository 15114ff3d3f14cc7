package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

const plannerInstruction = `You are a planner agent.
Given a user query and its classification, produce an executable plan.

Plan must be a JSON object with fields: steps (list of strings), tools (list of strings).
Respond with the JSON object only.
Steps may include:
- gather_context
- ask_technical_agent
- ask_geek_agent
- ask_general_agent
- ask_architecture_agent
- generate_code
- run_unit_tests
- generate_architecture_design
- format_answer`

type planTemplate struct {
	steps []string
	tools []string
}

var staticPlans = map[string]planTemplate{
	domain.ClassCode: {
		steps: []string{"gather_context", "generate_code", "run_unit_tests", "format_answer"},
		tools: []string{"CodeHelper", "TestRunner"},
	},
	domain.ClassArchitecture: {
		steps: []string{"gather_context", "generate_architecture_design", "format_answer"},
		tools: []string{"RAGRetriever"},
	},
	domain.ClassConceptual: {
		steps: []string{"gather_context", "ask_geek_agent", "format_answer"},
		tools: []string{"RAGRetriever"},
	},
}

var defaultPlan = planTemplate{
	steps: []string{"gather_context", "generate_answer", "format_answer"},
	tools: []string{"RAGRetriever"},
}

// StaticPlan returns the fixed plan for a classification type.
func StaticPlan(class string) *domain.Plan {
	t, ok := staticPlans[class]
	if !ok {
		t = defaultPlan
	}
	return &domain.Plan{
		Steps:        append([]string(nil), t.steps...),
		Tools:        append([]string(nil), t.tools...),
		ContextNotes: []domain.Note{},
	}
}

// FallbackPlan is used whenever a generated plan cannot be parsed.
func FallbackPlan() *domain.Plan {
	return &domain.Plan{
		Steps:        []string{"ask_general_agent", "format_answer"},
		Tools:        []string{},
		ContextNotes: []domain.Note{},
	}
}

type planPayload struct {
	Steps []string `mapstructure:"steps"`
	Tools []string `mapstructure:"tools"`
}

// ParsePlan decodes a generated plan. Surrounding markdown code fences are ignored.
// Errors wrap domain.ErrPlanParse.
func ParsePlan(text string) (*domain.Plan, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanParse, err)
	}

	var payload planPayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &payload})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanParse, err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanParse, err)
	}
	// An explicit empty list is a valid plan; the executor reports there is nothing to run.
	if raw["steps"] == nil {
		return nil, fmt.Errorf("%w: plan has no steps field", domain.ErrPlanParse)
	}
	if payload.Steps == nil {
		payload.Steps = []string{}
	}
	if payload.Tools == nil {
		payload.Tools = []string{}
	}

	return &domain.Plan{
		Steps:        payload.Steps,
		Tools:        payload.Tools,
		ContextNotes: []domain.Note{},
	}, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line (it may carry a language tag).
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

// Plan is the planner stage.
func (e *Engine) Plan(ctx context.Context, s *domain.State) error {
	s.RecordAgent(domain.AgentPlanner)

	var plan *domain.Plan
	switch e.planner {
	case PlannerGenerative:
		prompt := fmt.Sprintf("User query: %s\nClassification: %s", s.Query, s.ClassificationType())
		text, err := e.complete(ctx, domain.AgentPlanner, domain.UserRequest(plannerInstruction, prompt))
		if err != nil {
			return err
		}
		plan, err = ParsePlan(text)
		if err != nil {
			e.logger.Debug("generated plan rejected, using fallback", "err", err)
			plan = FallbackPlan()
		}
	default:
		plan = StaticPlan(s.ClassificationType())
	}

	plan.ContextNotes = e.searchNotes(ctx, s.Query)
	s.Plan = plan
	e.logger.Debug("plan ready", "strategy", e.planner, "steps", plan.Steps)
	return nil
}

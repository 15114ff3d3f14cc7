package runtime_test

import (
	"context"
	"testing"

	"github.com/Tendo1904/mas-lab/internal/runtime"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPlan(t *testing.T) {
	tests := []struct {
		class string
		steps []string
		tools []string
	}{
		{domain.ClassCode, []string{"gather_context", "generate_code", "run_unit_tests", "format_answer"}, []string{"CodeHelper", "TestRunner"}},
		{domain.ClassArchitecture, []string{"gather_context", "generate_architecture_design", "format_answer"}, []string{"RAGRetriever"}},
		{domain.ClassConceptual, []string{"gather_context", "ask_geek_agent", "format_answer"}, []string{"RAGRetriever"}},
		{domain.ClassGeneral, []string{"gather_context", "generate_answer", "format_answer"}, []string{"RAGRetriever"}},
		{"something-else", []string{"gather_context", "generate_answer", "format_answer"}, []string{"RAGRetriever"}},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			p := runtime.StaticPlan(tt.class)
			assert.Equal(t, tt.steps, p.Steps)
			assert.Equal(t, tt.tools, p.Tools)
		})
	}

	t.Run("Plans are independent copies", func(t *testing.T) {
		p := runtime.StaticPlan(domain.ClassCode)
		p.Steps[0] = "mutated"
		assert.Equal(t, "gather_context", runtime.StaticPlan(domain.ClassCode).Steps[0])
	})
}

func TestParsePlan(t *testing.T) {
	t.Run("Plain JSON", func(t *testing.T) {
		p, err := runtime.ParsePlan(`{"steps": ["ask_geek_agent", "format_answer"], "tools": ["RAGRetriever"]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"ask_geek_agent", "format_answer"}, p.Steps)
		assert.Equal(t, []string{"RAGRetriever"}, p.Tools)
	})

	t.Run("Fenced JSON without tools", func(t *testing.T) {
		p, err := runtime.ParsePlan("```json\n{\"steps\": [\"ask_general_agent\"]}\n```")
		require.NoError(t, err)
		assert.Equal(t, []string{"ask_general_agent"}, p.Steps)
		assert.Equal(t, []string{}, p.Tools)
	})

	t.Run("Empty steps are kept", func(t *testing.T) {
		p, err := runtime.ParsePlan(`{"steps": [], "tools": []}`)
		require.NoError(t, err)
		assert.NotNil(t, p.Steps)
		assert.Empty(t, p.Steps)
	})

	for name, input := range map[string]string{
		"Not JSON":       "Sure! Here is your plan: ask the geek.",
		"Array":          `["gather_context"]`,
		"Wrong type":     `{"steps": "gather_context"}`,
		"Numeric steps":  `{"steps": [1, 2]}`,
		"Missing steps":  `{"tools": ["x"]}`,
		"Null steps":     `{"steps": null}`,
		"Empty response": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := runtime.ParsePlan(input)
			assert.ErrorIs(t, err, domain.ErrPlanParse)
		})
	}
}

func TestPlan_Static(t *testing.T) {
	f := newFixture(t)
	_, err := f.memory.Append(context.Background(), "python functions use def", nil)
	require.NoError(t, err)

	s := newState(t, "implement a function in python")
	require.NoError(t, f.engine.Route(context.Background(), s))
	require.NoError(t, f.engine.Plan(context.Background(), s))

	require.NotNil(t, s.Plan)
	assert.Equal(t, runtime.StaticPlan(domain.ClassCode).Steps, s.Plan.Steps)
	require.Len(t, s.Plan.ContextNotes, 1)
	assert.Equal(t, "python functions use def", s.Plan.ContextNotes[0].Text)
	assert.Equal(t, []string{domain.AgentRouter, domain.AgentPlanner}, s.AgentsActivated)
	assert.Zero(t, f.completion.Calls())
}

func TestPlan_GenerativeFallback(t *testing.T) {
	f := newFixture(t, runtime.WithPlanner(runtime.PlannerGenerative))
	f.completion.Reply("planner agent", "I would start by gathering context, then...")

	s := newState(t, "hi")
	require.NoError(t, f.engine.Plan(context.Background(), s))

	assert.Equal(t, []string{"ask_general_agent", "format_answer"}, s.Plan.Steps)
	assert.Empty(t, s.Plan.Tools)
	assert.NotNil(t, s.Plan.Tools)
}

func TestPlan_GenerativeParsed(t *testing.T) {
	f := newFixture(t, runtime.WithPlanner(runtime.PlannerGenerative))
	f.completion.Reply("planner agent", "```\n{\"steps\": [\"gather_context\", \"ask_technical_agent\", \"format_answer\"], \"tools\": [\"RAGRetriever\"]}\n```")

	s := newState(t, "how do channels work")
	require.NoError(t, f.engine.Route(context.Background(), s))
	require.NoError(t, f.engine.Plan(context.Background(), s))

	assert.Equal(t, []string{"gather_context", "ask_technical_agent", "format_answer"}, s.Plan.Steps)

	reqs := f.completion.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "User query: how do channels work\nClassification: general", reqs[0].Messages[0].Content)
}

func TestPlan_GenerativeEmptyPlanRunsNothing(t *testing.T) {
	f := newFixture(t, runtime.WithPlanner(runtime.PlannerGenerative))
	f.completion.Reply("planner agent", `{"steps": [], "tools": []}`)

	s := newState(t, "hi")
	require.NoError(t, f.engine.Plan(context.Background(), s))
	require.NotNil(t, s.Plan)
	assert.Empty(t, s.Plan.Steps)

	require.NoError(t, f.engine.Execute(context.Background(), s))
	require.NotNil(t, s.PartialAnswers.ExecutorResult)
	assert.Equal(t, domain.NoPlanResult, *s.PartialAnswers.ExecutorResult)
}

func TestPlan_GenerativeTransportError(t *testing.T) {
	f := newFixture(t, runtime.WithPlanner(runtime.PlannerGenerative))
	f.completion.Fail("planner agent")

	s := newState(t, "hi")
	err := f.engine.Plan(context.Background(), s)

	assert.ErrorIs(t, err, domain.ErrCompletion)
	assert.Nil(t, s.Plan)
	assert.Equal(t, []string{domain.AgentPlanner}, s.AgentsActivated, "planner logs itself before failing")
}

package maslab_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Tendo1904/mas-lab"
	"github.com/Tendo1904/mas-lab/internal/testutils"
	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/guard"
	"github.com/Tendo1904/mas-lab/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_RunDefaults(t *testing.T) {
	p := maslab.New()
	s, report, err := p.RunWithReport(context.Background(), "How to implement a function in python?", maslab.WithUserID("u1"))
	require.NoError(t, err)

	assert.Empty(t, report.Failed())
	assert.Equal(t, domain.ClassCode, s.ClassificationType())
	assert.NotEmpty(t, s.Answer())
	require.NotNil(t, s.UserID)
	assert.Equal(t, "u1", *s.UserID)
	assert.Len(t, s.SessionHistory, 1)

	notes, err := p.Memory().List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, strings.HasPrefix(notes[0].Text, "QA: How to implement"))
}

func TestPipeline_RejectsInvalidQueries(t *testing.T) {
	p := maslab.New(maslab.WithMaxQuerySize(16))

	for _, q := range []string{"", "   ", strings.Repeat("a", 17), "bad \xff utf8"} {
		_, err := p.Run(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "query %q", q)
	}

	_, err := p.Run(context.Background(), strings.Repeat("a", 17))
	assert.ErrorIs(t, err, guard.ErrQueryTooLarge)
}

func TestPipeline_StripsControlCharacters(t *testing.T) {
	s, err := maslab.New().Run(context.Background(), "hello\x1b[31m world")
	require.NoError(t, err)
	assert.Equal(t, "hello[31m world", s.Query)
}

func TestPipeline_CustomStep(t *testing.T) {
	completion := testutils.NewScriptedCompletion().
		Reply("planner agent", `{"steps": ["shout", "format_answer"], "tools": []}`)

	p := maslab.New(
		maslab.WithCompletionService(completion),
		maslab.WithPlanner(maslab.PlannerGenerative),
		maslab.WithStep("shout", func(ctx context.Context, s *domain.State) (string, error) {
			s.RecordAgent("shouter")
			return strings.ToUpper(s.Query), nil
		}),
	)
	assert.Contains(t, p.Steps(), "shout")

	s, err := p.Run(context.Background(), "hi there")
	require.NoError(t, err)
	assert.Equal(t, []string{"shout", "format_answer"}, s.Plan.Steps)
	assert.Contains(t, s.AgentsActivated, "shouter")
	assert.Equal(t, "HI THERE", s.Answer())
}

func TestPipeline_StepIsolationOff(t *testing.T) {
	completion := testutils.NewScriptedCompletion().Fail("general-purpose")
	p := maslab.New(maslab.WithCompletionService(completion), maslab.WithStepIsolation(false))

	s, report, err := p.RunWithReport(context.Background(), "hi")
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, domain.AgentExecutor, failed[0].Stage)
	assert.True(t, errors.Is(failed[0].Err, domain.ErrCompletion))
	assert.NotNil(t, s.FinalAnswer)
}

func TestPipeline_Hooks(t *testing.T) {
	var mu sync.Mutex
	var stages []string
	hooks := domain.LifecycleHooks{
		OnStageLeave: func(_ context.Context, e *domain.StageEvent) {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, e.Stage)
		},
	}
	counted := 0
	extra := domain.LifecycleHooks{
		OnStepLeave: func(context.Context, *domain.StepEvent) { counted++ },
	}

	p := maslab.New(maslab.WithLifecycleHooks(hooks), maslab.WithLifecycleHooks(extra))
	_, err := p.Run(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, p.Stages(), stages)
	assert.Equal(t, 3, counted) // gather_context, generate_answer, format_answer
}

func TestPipeline_SessionRoundTrip(t *testing.T) {
	p := maslab.New(maslab.WithMemoryStore(memory.NewNoteStore()))
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(p.RunSession))
	ctx := context.Background()

	_, err := mgr.Ask(ctx, "chat", "hi")
	require.NoError(t, err)
	s, err := mgr.Ask(ctx, "chat", "tell me about movies")
	require.NoError(t, err)

	require.Len(t, s.SessionHistory, 2)
	assert.Equal(t, "hi", s.SessionHistory[0].Question)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, maslab.Version)
	assert.Equal(t, strings.TrimSpace(maslab.Version), maslab.Version)
}

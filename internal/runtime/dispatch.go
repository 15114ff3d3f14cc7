package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Execute is the executor stage: it interprets the plan steps in order.
//
// Every step gets an audit record keyed "{index}:{step}" and its textual result becomes
// executor_result for the next step. Unknown steps yield a placeholder result. With step
// isolation a failing step is recorded and the remaining steps still run; without it the
// first failure aborts the stage.
func (e *Engine) Execute(ctx context.Context, s *domain.State) error {
	s.RecordAgent(domain.AgentExecutor)

	if s.Plan == nil || len(s.Plan.Steps) == 0 {
		s.SetExecutorResult(domain.NoPlanResult)
		return nil
	}

	// Iterate a snapshot; handlers may touch the state but not the step list we walk.
	steps := slices.Clone(s.Plan.Steps)
	s.PartialAnswers.Extra.ResetExecutorSteps()

	for i, name := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.dispatch(ctx, s, i, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, s *domain.State, index int, name string) error {
	key := fmt.Sprintf("%d:%s", index, name)
	kind := domain.ParseStep(name)
	before := slices.Clone(s.AgentsActivated)

	e.stepEnter(ctx, index, name, kind)
	start := time.Now()

	var (
		result string
		trace  string
		err    error
	)
	handler, rerr := e.registry.Resolve(name)
	switch {
	case errors.Is(rerr, domain.ErrUnknownStep):
		e.logger.Debug("unknown plan step", "step", name)
		result = domain.UnknownStepPrefix + name
	case e.isolate:
		trace, err = protect(func() error {
			var herr error
			result, herr = handler(ctx, s)
			return herr
		})
	default:
		result, err = handler(ctx, s)
	}

	rec := domain.StepRecord{
		Status:               domain.StepDone,
		ActivatedAgentsDelta: domain.AgentsDelta(before, s.AgentsActivated),
	}
	if err != nil {
		rec.Status = domain.StepFailed
		rec.Error = err.Error()
	} else {
		rec.ResultSnippet = snippet(result)
		s.SetExecutorResult(result)
	}
	s.PartialAnswers.Extra.RecordStep(key, rec)
	e.stepLeave(ctx, index, name, kind, time.Since(start), err)

	if err == nil {
		return nil
	}
	if !e.isolate {
		return fmt.Errorf("step %s: %w", key, err)
	}
	e.recordFailure(ctx, s, failingAgent(before, s.AgentsActivated, name), err, trace)
	return nil
}

// failingAgent names the agent blamed for a failed step: the last agent the step
// activated, or the step itself when it activated none.
func failingAgent(before, after []string, step string) string {
	if len(after) > len(before) {
		return after[len(after)-1]
	}
	return step
}

// snippet bounds a step result for the audit record. Empty results have no snippet.
func snippet(result string) *string {
	if result == "" {
		return nil
	}
	s := truncate(result, domain.SnippetLimit)
	return &s
}

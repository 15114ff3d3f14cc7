package runtime

import (
	"context"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Stage is one unit of the fixed pipeline.
type Stage struct {
	Name string
	Run  Handler

	// Skip, when set and true, skips the stage.
	Skip func(s *domain.State) bool

	// Terminal stages run even after an early exit.
	Terminal bool
}

// Pipeline runs stages in a fixed order, absorbing every stage failure.
type Pipeline struct {
	engine *Engine
	stages []Stage
}

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(e *Engine, stages ...Stage) *Pipeline {
	return &Pipeline{engine: e, stages: stages}
}

// NewDefaultPipeline builds router, planner, rag_retriever, executor, formatter and
// supervisor. The formatter stage is skipped when a plan step already produced the final
// answer, so a run appends exactly one session entry.
func NewDefaultPipeline(e *Engine) *Pipeline {
	return NewPipeline(e, e.DefaultStages()...)
}

// DefaultStages returns the stages of the default pipeline.
func (e *Engine) DefaultStages() []Stage {
	return []Stage{
		{Name: domain.AgentRouter, Run: e.Route},
		{Name: domain.AgentPlanner, Run: e.Plan},
		{Name: domain.AgentRAGRetriever, Run: stage(e.Retrieve)},
		{Name: domain.AgentExecutor, Run: e.Execute},
		{
			Name: domain.AgentFormatter,
			Run:  stage(e.Format),
			Skip: func(s *domain.State) bool { return s.FinalAnswer != nil },
		},
		{Name: domain.AgentSupervisor, Run: e.Supervise, Terminal: true},
	}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name
	}
	return names
}

// Run drives the state through every stage and reports each outcome.
//
// A failing stage is recorded in the state and the run goes on. Once the final answer
// trips the safety policy, or ctx is done, the remaining non-terminal stages are skipped.
// The final answer is never nil afterwards.
func (p *Pipeline) Run(ctx context.Context, s *domain.State) *domain.RunReport {
	report := &domain.RunReport{Stages: make([]domain.StageResult, 0, len(p.stages))}
	halted := false

	for _, st := range p.stages {
		if !st.Terminal && (halted || (st.Skip != nil && st.Skip(s))) {
			res := domain.StageResult{Stage: st.Name, Skipped: true}
			p.engine.stageEnter(ctx, st.Name)
			p.engine.stageLeave(ctx, res)
			report.Stages = append(report.Stages, res)
			continue
		}
		if st.Terminal && s.FinalAnswer == nil {
			s.SetFinalAnswer(domain.EmptyAnswer)
		}

		report.Stages = append(report.Stages, p.runStage(ctx, s, st))

		if !halted && (ctx.Err() != nil || (s.FinalAnswer != nil && Violates(*s.FinalAnswer))) {
			p.engine.logger.Debug("early exit", "after", st.Name)
			halted = true
		}
	}

	if s.FinalAnswer == nil {
		s.SetFinalAnswer(domain.EmptyAnswer)
	}
	return report
}

func (p *Pipeline) runStage(ctx context.Context, s *domain.State, st Stage) domain.StageResult {
	e := p.engine
	e.stageEnter(ctx, st.Name)
	start := time.Now()

	trace, err := protect(func() error {
		return st.Run(ctx, s)
	})
	if err != nil {
		e.recordFailure(ctx, s, st.Name, err, trace)
	}

	res := domain.StageResult{Stage: st.Name, Duration: time.Since(start), Err: err}
	e.stageLeave(ctx, res)
	return res
}

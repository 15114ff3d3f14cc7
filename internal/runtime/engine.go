package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/ports"
)

// PlannerStrategy selects how plans are produced.
type PlannerStrategy string

const (
	// PlannerStatic looks the plan up in a fixed table keyed by classification.
	PlannerStatic PlannerStrategy = "static"
	// PlannerGenerative asks the completion service for a JSON plan.
	PlannerGenerative PlannerStrategy = "generative"
)

// FormatterStrategy selects how the final answer is composed.
type FormatterStrategy string

const (
	// FormatterSimple concatenates the executor result and the retrieved context.
	FormatterSimple FormatterStrategy = "simple"
	// FormatterGenerative rewrites the executor result through the completion service.
	FormatterGenerative FormatterStrategy = "generative"
)

// Handler is one fixed pipeline stage. It mutates the state in place.
type Handler func(ctx context.Context, s *domain.State) error

// StepHandler executes one plan step and returns its primary textual result.
// An empty result means the step produced no text.
type StepHandler func(ctx context.Context, s *domain.State) (string, error)

// Engine holds the collaborators and strategies shared by every stage and step.
// It keeps no per-run data, so one Engine may serve concurrent runs on distinct states.
type Engine struct {
	completion ports.CompletionService
	memory     ports.MemoryStore
	logger     *slog.Logger
	hooks      domain.LifecycleHooks

	planner   PlannerStrategy
	formatter FormatterStrategy
	topK      int
	isolate   bool

	custom   map[string]StepHandler
	registry *Registry
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithPlanner selects the planner strategy.
func WithPlanner(strategy PlannerStrategy) Option {
	return func(e *Engine) {
		e.planner = strategy
	}
}

// WithFormatter selects the formatter strategy.
func WithFormatter(strategy FormatterStrategy) Option {
	return func(e *Engine) {
		e.formatter = strategy
	}
}

// WithTopK sets how many notes are retrieved as context. Non-positive values keep the default.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithStepIsolation controls whether a failing plan step is absorbed by the dispatcher
// (true, the default) or aborts the executor stage (false).
func WithStepIsolation(enabled bool) Option {
	return func(e *Engine) {
		e.isolate = enabled
	}
}

// WithStep registers an additional step handler. Known step names replace the built-in
// handler; any other name becomes available to plans.
func WithStep(name string, handler StepHandler) Option {
	return func(e *Engine) {
		e.custom[name] = handler
	}
}

// NewEngine creates an engine. Both collaborators are required.
func NewEngine(completion ports.CompletionService, memory ports.MemoryStore, opts ...Option) *Engine {
	e := &Engine{
		completion: completion,
		memory:     memory,
		logger:     logging.NewNop(),
		planner:    PlannerStatic,
		formatter:  FormatterSimple,
		topK:       domain.DefaultTopK,
		isolate:    true,
		custom:     make(map[string]StepHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registry = e.DefaultRegistry()
	for name, h := range e.custom {
		e.registry.RegisterCustom(name, h)
	}
	return e
}

// Registry exposes the step registry used by the dispatcher.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Memory returns the memory store.
func (e *Engine) Memory() ports.MemoryStore {
	return e.memory
}

// complete issues one completion request on behalf of agent.
func (e *Engine) complete(ctx context.Context, agent string, req domain.CompletionRequest) (string, error) {
	start := time.Now()
	resp, err := e.completion.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", agent, err)
	}
	e.logger.Debug("completion done", "agent", agent, "duration", time.Since(start))
	return resp.Text, nil
}

// searchNotes queries the memory store. Store failures are treated as an empty result.
func (e *Engine) searchNotes(ctx context.Context, query string) []domain.Note {
	notes, err := e.memory.Search(ctx, query, e.topK)
	if err != nil {
		e.logger.Warn("memory search failed, continuing without context", "err", err)
		return []domain.Note{}
	}
	return notes
}

func (e *Engine) stageEnter(ctx context.Context, stage string) {
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageEnter},
			Stage:     stage,
		})
	}
}

func (e *Engine) stageLeave(ctx context.Context, res domain.StageResult) {
	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageLeave},
			Stage:     res.Stage,
			Duration:  res.Duration,
			Skipped:   res.Skipped,
			Err:       res.Err,
		})
	}
}

func (e *Engine) stepEnter(ctx context.Context, index int, step string, kind domain.StepKind) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter},
			Index:     index,
			Step:      step,
			Kind:      kind,
		})
	}
}

func (e *Engine) stepLeave(ctx context.Context, index int, step string, kind domain.StepKind, d time.Duration, err error) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepLeave},
			Index:     index,
			Step:      step,
			Kind:      kind,
			Duration:  d,
			Err:       err,
		})
	}
}

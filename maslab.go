package maslab

import (
	"context"
	"log/slog"

	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/internal/runtime"
	"github.com/Tendo1904/mas-lab/pkg/adapters/echo"
	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/guard"
	"github.com/Tendo1904/mas-lab/pkg/ports"
)

// Strategy names accepted by WithPlanner and WithFormatter.
const (
	PlannerStatic       = string(runtime.PlannerStatic)
	PlannerGenerative   = string(runtime.PlannerGenerative)
	FormatterSimple     = string(runtime.FormatterSimple)
	FormatterGenerative = string(runtime.FormatterGenerative)
)

// StepFunc executes one custom plan step and returns its textual result.
type StepFunc = runtime.StepHandler

// Pipeline is the high-level entry point of the library.
// It wraps the internal runtime and is safe for concurrent runs.
type Pipeline struct {
	engine    *runtime.Engine
	pipeline  *runtime.Pipeline
	sanitizer *guard.Sanitizer
	logger    *slog.Logger

	completion ports.CompletionService
	memory     ports.MemoryStore
	hooks      domain.LifecycleHooks
	engineOpts []runtime.Option
	maxQuery   int
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithCompletionService sets the inference backend. Defaults to the offline echo service.
func WithCompletionService(svc ports.CompletionService) Option {
	return func(p *Pipeline) {
		p.completion = svc
	}
}

// WithMemoryStore sets the long-term note store. Defaults to an in-memory store.
func WithMemoryStore(store ports.MemoryStore) Option {
	return func(p *Pipeline) {
		p.memory = store
	}
}

// WithPlanner selects the planner strategy ("static" or "generative").
func WithPlanner(strategy string) Option {
	return func(p *Pipeline) {
		p.engineOpts = append(p.engineOpts, runtime.WithPlanner(runtime.PlannerStrategy(strategy)))
	}
}

// WithFormatter selects the formatter strategy ("simple" or "generative").
func WithFormatter(strategy string) Option {
	return func(p *Pipeline) {
		p.engineOpts = append(p.engineOpts, runtime.WithFormatter(runtime.FormatterStrategy(strategy)))
	}
}

// WithTopK sets how many notes the planner and retriever fetch.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		p.engineOpts = append(p.engineOpts, runtime.WithTopK(k))
	}
}

// WithStepIsolation controls whether a failing plan step aborts the executor stage.
// Isolation is on by default.
func WithStepIsolation(enabled bool) Option {
	return func(p *Pipeline) {
		p.engineOpts = append(p.engineOpts, runtime.WithStepIsolation(enabled))
	}
}

// WithStep registers a custom plan step, or replaces a built-in one.
func WithStep(name string, fn StepFunc) Option {
	return func(p *Pipeline) {
		p.engineOpts = append(p.engineOpts, runtime.WithStep(name, fn))
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = domain.MergeHooks(p.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMaxQuerySize bounds the accepted query size in bytes.
func WithMaxQuerySize(n int) Option {
	return func(p *Pipeline) {
		p.maxQuery = n
	}
}

// New builds a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.completion == nil {
		p.completion = echo.New()
	}
	if p.memory == nil {
		p.memory = memory.NewNoteStore()
	}

	engineOpts := append([]runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
	}, p.engineOpts...)

	p.engine = runtime.NewEngine(p.completion, p.memory, engineOpts...)
	p.pipeline = runtime.NewDefaultPipeline(p.engine)
	p.sanitizer = guard.NewSanitizer(p.maxQuery)
	return p
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	userID  string
	history []domain.SessionEntry
}

// WithUserID attaches a user identifier to the state.
func WithUserID(id string) RunOption {
	return func(c *runConfig) {
		c.userID = id
	}
}

// WithHistory seeds the state with prior session entries.
func WithHistory(history []domain.SessionEntry) RunOption {
	return func(c *runConfig) {
		c.history = history
	}
}

// Run answers one query. The only error is a rejected query (domain.ErrInvalidInput);
// everything after that is recorded in the returned state.
func (p *Pipeline) Run(ctx context.Context, query string, opts ...RunOption) (*domain.State, error) {
	s, _, err := p.RunWithReport(ctx, query, opts...)
	return s, err
}

// RunWithReport is Run plus the outcome of every stage.
func (p *Pipeline) RunWithReport(ctx context.Context, query string, opts ...RunOption) (*domain.State, *domain.RunReport, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	clean, err := p.sanitizer.Clean(query)
	if err != nil {
		return nil, nil, err
	}
	s, err := domain.NewState(clean, cfg.userID)
	if err != nil {
		return nil, nil, err
	}
	s.SessionHistory = append(s.SessionHistory, cfg.history...)

	p.logger.Debug("run started", "query_size", len(clean))
	report := p.pipeline.Run(ctx, s)
	if failed := report.Failed(); len(failed) > 0 {
		p.logger.Info("run finished with stage errors", "failed", len(failed))
	}
	return s, report, nil
}

// RunSession adapts the pipeline to a session.RunFunc.
func (p *Pipeline) RunSession(ctx context.Context, query string, history []domain.SessionEntry) (*domain.State, error) {
	return p.Run(ctx, query, WithHistory(history))
}

// Stages returns the fixed stage names in execution order.
func (p *Pipeline) Stages() []string {
	return p.pipeline.Stages()
}

// Steps returns every plan step name the dispatcher can run.
func (p *Pipeline) Steps() []string {
	return p.engine.Registry().Steps()
}

// Memory returns the long-term note store.
func (p *Pipeline) Memory() ports.MemoryStore {
	return p.memory
}

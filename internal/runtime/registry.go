package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Registry maps plan steps to handlers: known steps by kind, plan-defined steps by name.
// It is not safe for concurrent mutation; populate it before running.
type Registry struct {
	known  map[domain.StepKind]StepHandler
	custom map[string]StepHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		known:  make(map[domain.StepKind]StepHandler),
		custom: make(map[string]StepHandler),
	}
}

// Register binds a known step kind.
func (r *Registry) Register(kind domain.StepKind, h StepHandler) error {
	if kind == domain.StepUnknown {
		return fmt.Errorf("cannot register handler for %s step", kind)
	}
	r.bind(kind, h)
	return nil
}

func (r *Registry) bind(kind domain.StepKind, h StepHandler) {
	r.known[kind] = h
}

// RegisterCustom binds a step by name. Names of known steps replace the built-in handler.
func (r *Registry) RegisterCustom(name string, h StepHandler) {
	if kind := domain.ParseStep(name); kind != domain.StepUnknown {
		r.bind(kind, h)
		return
	}
	r.custom[name] = h
}

// Resolve finds the handler for a step name by exact match.
// Unresolved names return an error wrapping domain.ErrUnknownStep.
func (r *Registry) Resolve(name string) (StepHandler, error) {
	if kind := domain.ParseStep(name); kind != domain.StepUnknown {
		if h, ok := r.known[kind]; ok {
			return h, nil
		}
	}
	if h, ok := r.custom[name]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStep, name)
}

// Steps lists the resolvable step names: known steps in declaration order, then custom
// steps sorted by name.
func (r *Registry) Steps() []string {
	var out []string
	for _, name := range domain.KnownSteps() {
		if _, ok := r.known[domain.ParseStep(name)]; ok {
			out = append(out, name)
		}
	}
	custom := make([]string, 0, len(r.custom))
	for name := range r.custom {
		custom = append(custom, name)
	}
	sort.Strings(custom)
	return append(out, custom...)
}

// DefaultRegistry binds every known step to the engine's handlers.
func (e *Engine) DefaultRegistry() *Registry {
	r := NewRegistry()
	handlers := map[domain.StepKind]StepHandler{
		domain.StepGatherContext:              e.Retrieve,
		domain.StepAskTechnical:               e.agentStep(technicalAgent),
		domain.StepAskGeek:                    e.agentStep(geekAgent),
		domain.StepAskGeneral:                 e.agentStep(generalAgent),
		domain.StepAskArchitecture:            e.agentStep(architectureAgent),
		domain.StepGenerateAnswer:             e.agentStep(generalAgent),
		domain.StepGenerateCode:               e.agentStep(codeAgent),
		domain.StepGenerateArchitectureDesign: e.agentStep(architectureAgent),
		domain.StepRunUnitTests:               e.runUnitTests,
		domain.StepFormatAnswer:               e.Format,
	}
	for kind, h := range handlers {
		r.bind(kind, h)
	}
	return r
}

// stage adapts a step handler to a stage handler, discarding the textual result.
func stage(h StepHandler) Handler {
	return func(ctx context.Context, s *domain.State) error {
		_, err := h(ctx, s)
		return err
	}
}

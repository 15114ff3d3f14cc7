package runtime

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// protect runs fn, converting a panic into an error. The trace is the goroutine stack
// for a panic and the wrap chain for a returned error.
func protect(fn func() error) (trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			trace = string(debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err = fn(); err != nil {
		trace = errorChain(err)
	}
	return trace, err
}

// errorChain lists err and every error it wraps, outermost first.
func errorChain(err error) string {
	var b strings.Builder
	writeChain(&b, err, 0)
	return b.String()
}

func writeChain(b *strings.Builder, err error, depth int) {
	if err == nil {
		return
	}
	fmt.Fprintf(b, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			writeChain(b, inner, depth+1)
		}
	default:
		writeChain(b, errors.Unwrap(err), depth+1)
	}
}

// recordFailure turns an absorbed failure into data: an ErrorRecord in the state and an
// audit note in the memory store tagged with the failing agent.
func (e *Engine) recordFailure(ctx context.Context, s *domain.State, agent string, err error, trace string) {
	s.PartialAnswers.Extra.AddError(domain.ErrorRecord{
		Agent: agent,
		Error: err.Error(),
		Trace: trace,
	})
	e.logger.Warn("failure absorbed", "agent", agent, "err", err)

	note := fmt.Sprintf("ERROR in %s: %v", agent, err)
	if _, aerr := e.memory.Append(context.WithoutCancel(ctx), note, []string{domain.TagError, agent}); aerr != nil {
		e.logger.Warn("failed to record error note", "agent", agent, "err", aerr)
	}
}

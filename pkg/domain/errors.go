package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a State is built from an empty or blank query.
var ErrInvalidInput = errors.New("invalid input")

// ErrCompletion wraps any failure reported by a CompletionService.
var ErrCompletion = errors.New("completion service error")

// ErrPlanParse is returned when a generated plan is not well-formed.
// The planner always absorbs it with the fallback plan.
var ErrPlanParse = errors.New("plan parse error")

// ErrUnknownStep marks a plan step that is not in the registry.
var ErrUnknownStep = errors.New("unknown step")

// ErrMemoryStoreIO is returned when a memory store backend cannot be read or written.
var ErrMemoryStoreIO = errors.New("memory store io error")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// InvalidInputError describes why a field was rejected.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidInput).
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

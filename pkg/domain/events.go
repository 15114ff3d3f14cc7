package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter EventType = "stage_enter"
	EventStageLeave EventType = "stage_leave"
	EventStepEnter  EventType = "step_enter"
	EventStepLeave  EventType = "step_leave"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StageEvent represents entry or exit from a fixed pipeline stage.
type StageEvent struct {
	EventBase
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Err      error         `json:"-"`
}

// StepEvent represents the execution of one plan step.
type StepEvent struct {
	EventBase
	Index    int           `json:"index"`
	Step     string        `json:"step"`
	Kind     StepKind      `json:"kind"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnStepEnter  func(context.Context, *StepEvent)
	OnStepLeave  func(context.Context, *StepEvent)
}

// MergeHooks returns hooks that call every non-nil callback in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *StageEvent) {
			for _, h := range all {
				if h.OnStageEnter != nil {
					h.OnStageEnter(ctx, e)
				}
			}
		},
		OnStageLeave: func(ctx context.Context, e *StageEvent) {
			for _, h := range all {
				if h.OnStageLeave != nil {
					h.OnStageLeave(ctx, e)
				}
			}
		},
		OnStepEnter: func(ctx context.Context, e *StepEvent) {
			for _, h := range all {
				if h.OnStepEnter != nil {
					h.OnStepEnter(ctx, e)
				}
			}
		},
		OnStepLeave: func(ctx context.Context, e *StepEvent) {
			for _, h := range all {
				if h.OnStepLeave != nil {
					h.OnStepLeave(ctx, e)
				}
			}
		},
	}
}

// StageResult is the explicit outcome of one fixed stage.
type StageResult struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Skipped  bool          `json:"skipped,omitempty"`
	Err      error         `json:"-"`
}

// OK reports whether the stage ran without error.
func (r StageResult) OK() bool {
	return !r.Skipped && r.Err == nil
}

// RunReport aggregates stage outcomes of one run, in execution order.
type RunReport struct {
	Stages []StageResult `json:"stages"`
}

// Failed returns the stages that reported an error.
func (r *RunReport) Failed() []StageResult {
	var out []StageResult
	for _, s := range r.Stages {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

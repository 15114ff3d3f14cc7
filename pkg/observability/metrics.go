package observability

import (
	"context"
	"net/http"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "maslab"

// Metrics records stage and step outcomes of the pipeline.
type Metrics struct {
	gatherer prometheus.Gatherer

	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec
	StageSkipped  *prometheus.CounterVec
	Steps         *prometheus.CounterVec
	StepDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of fixed pipeline stages",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Total number of stages that returned an error",
			},
			[]string{"stage"},
		),
		StageSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_skipped_total",
				Help:      "Total number of stages skipped by early exit",
			},
			[]string{"stage"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of executed plan steps",
			},
			[]string{"step", "status"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of plan step handlers",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
	}

	reg.MustRegister(m.StageDuration, m.StageFailures, m.StageSkipped, m.Steps, m.StepDuration)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageLeave: func(_ context.Context, e *domain.StageEvent) {
			if e.Skipped {
				m.StageSkipped.WithLabelValues(e.Stage).Inc()
				return
			}
			m.StageDuration.WithLabelValues(e.Stage).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.StageFailures.WithLabelValues(e.Stage).Inc()
			}
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			status := string(domain.StepDone)
			if e.Err != nil {
				status = string(domain.StepFailed)
			}
			m.Steps.WithLabelValues(e.Step, status).Inc()
			m.StepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

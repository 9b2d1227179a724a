package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "intake"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	StepEnters     *prometheus.CounterVec
	StepLeaves     *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	Collaborators  *prometheus.CounterVec
	CollaboratorMS *prometheus.HistogramVec
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegistry registers the collectors on r instead of the default registry.
func WithRegistry(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// NewMetrics creates and registers the collectors.
// It panics when a collector with the same name is already registered.
func NewMetrics(opts ...Option) *Metrics {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		StepEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "step_enters_total",
				Help:      "Total number of step entries",
			},
			[]string{"flow", "step"},
		),
		StepLeaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "step_leaves_total",
				Help:      "Total number of step exits",
			},
			[]string{"flow", "step"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "submissions_total",
				Help:      "Submission attempts by terminal status",
			},
			[]string{"flow", "status"},
		),
		Collaborators: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "collaborator_calls_total",
				Help:      "Submission side effects by outcome",
			},
			[]string{"collaborator", "success"},
		),
		CollaboratorMS: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "collaborator_duration_seconds",
				Help:      "Duration of submission side effects",
			},
			[]string{"collaborator"},
		),
	}

	o.registerer.MustRegister(m.StepEnters, m.StepLeaves, m.Submissions, m.Collaborators, m.CollaboratorMS)
	return m
}

// Hooks returns lifecycle hooks that record into m.
// Combine with other hooks via domain.LifecycleHooks.Merge.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepEnters.WithLabelValues(e.FlowID, e.StepID).Inc()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.StepLeaves.WithLabelValues(e.FlowID, e.StepID).Inc()
		},
		OnSubmission: func(_ context.Context, e *domain.SubmissionEvent) {
			m.Submissions.WithLabelValues(e.FlowID, string(e.Status)).Inc()
		},
		OnCollaboratorReturn: func(_ context.Context, e *domain.CollaboratorEvent) {
			m.Collaborators.WithLabelValues(e.Result.Name, strconv.FormatBool(e.Result.Success)).Inc()
			m.CollaboratorMS.WithLabelValues(e.Result.Name).Observe(e.Result.Duration.Seconds())
		},
	}
}

// Package observability provides optional Prometheus instrumentation for
// a machine. Wiring it (or not) never changes the observable event
// contract; it is a diagnostic side channel only.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts transitions and hook executions for one machine.
type Metrics struct {
	// Transitions counts accepted state changes (self-transitions excluded).
	Transitions prometheus.Counter

	// HookRuns counts hook executions by phase and terminal status.
	HookRuns *prometheus.CounterVec

	// SuppressedFailures counts non-blocking hook failures that were
	// discarded per policy. This is the only place they are visible.
	SuppressedFailures prometheus.Counter
}

// NewMetrics registers the machine metrics on reg. Pass
// prometheus.DefaultRegisterer for the process-global registry, or a
// private registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "pergola_transitions_total",
			Help: "Accepted state transitions.",
		}),
		HookRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pergola_hook_runs_total",
			Help: "Hook executions by phase and status.",
		}, []string{"phase", "status"}),
		SuppressedFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pergola_suppressed_hook_failures_total",
			Help: "Non-blocking hook failures discarded per policy.",
		}),
	}
}

// ObserveTransition records one accepted state change.
func (m *Metrics) ObserveTransition() {
	if m == nil {
		return
	}
	m.Transitions.Inc()
}

// ObserveHook records a finished hook execution.
func (m *Metrics) ObserveHook(phase, status string) {
	if m == nil {
		return
	}
	m.HookRuns.WithLabelValues(phase, status).Inc()
}

// ObserveSuppressed records a discarded non-blocking failure.
func (m *Metrics) ObserveSuppressed() {
	if m == nil {
		return
	}
	m.SuppressedFailures.Inc()
}

package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for session activity.
//
// Metrics exposed (all namespaced "magicprompt"):
//
//   - answers_stored_total (counter): answers committed per stage.
//   - stage_advances_total (counter): advances between stages, labeled by
//     source and target.
//   - shortcuts_taken_total (counter): advances that used a conditional edge.
//   - transform_failures_total (counter): transform errors per stage and
//     transform name.
//
// Create with a caller-owned registry and expose it however the application
// likes (promhttp, push, tests via testutil):
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewMetrics(registry)
//	session := graph.NewSession(g, graph.WithMetrics(metrics))
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	answersStored     *prometheus.CounterVec
	stageAdvances     *prometheus.CounterVec
	shortcutsTaken    *prometheus.CounterVec
	transformFailures *prometheus.CounterVec
}

// NewMetrics creates session metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		answersStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Name:      "answers_stored_total",
			Help:      "Stage answers committed to the traversal context.",
		}, []string{"stage"}),

		stageAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Name:      "stage_advances_total",
			Help:      "Session advances between stages.",
		}, []string{"from", "to"}),

		shortcutsTaken: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Name:      "shortcuts_taken_total",
			Help:      "Advances that traversed a conditional shortcut edge.",
		}, []string{"from", "to"}),

		transformFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Name:      "transform_failures_total",
			Help:      "Transform errors raised while storing stage answers.",
		}, []string{"stage", "transform"}),
	}
}

// AnswerStored records a committed answer for a stage.
func (m *Metrics) AnswerStored(stage string) {
	if m == nil {
		return
	}
	m.answersStored.WithLabelValues(stage).Inc()
}

// StageAdvanced records an advance, counting it as a shortcut when the
// traversed edge was conditional.
func (m *Metrics) StageAdvanced(from, to string, shortcut bool) {
	if m == nil {
		return
	}
	m.stageAdvances.WithLabelValues(from, to).Inc()
	if shortcut {
		m.shortcutsTaken.WithLabelValues(from, to).Inc()
	}
}

// TransformFailed records a transform error during Submit.
func (m *Metrics) TransformFailed(stage, transform string) {
	if m == nil {
		return
	}
	m.transformFailures.WithLabelValues(stage, transform).Inc()
}

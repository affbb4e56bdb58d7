package chat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the chat loop. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	turnsTotal  prometheus.Counter
	turnLatency prometheus.Histogram
	tokensTotal prometheus.Counter
	errorsTotal prometheus.Counter
}

// NewMetrics creates chat metrics registered with the given registerer.
// Passing nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		turnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total number of completed chat turns.",
		}),
		turnLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "magicprompt",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "Wall-clock duration of a chat turn, prompt to reply.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		tokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Subsystem: "chat",
			Name:      "tokens_used_total",
			Help:      "Total tokens reported by the model across all turns.",
		}),
		errorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "magicprompt",
			Subsystem: "chat",
			Name:      "errors_total",
			Help:      "Total number of failed chat turns.",
		}),
	}
}

// TurnCompleted records a successful turn.
func (m *Metrics) TurnCompleted(dur time.Duration, tokens int) {
	if m == nil {
		return
	}
	m.turnsTotal.Inc()
	m.turnLatency.Observe(dur.Seconds())
	m.tokensTotal.Add(float64(tokens))
}

// TurnFailed records a turn that ended in an error.
func (m *Metrics) TurnFailed() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

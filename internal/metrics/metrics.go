package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/controller"
	"github.com/prometheus/client_golang/prometheus"
)

// Session status label values
const (
	StatusFinished      = "finished"
	StatusMaxIterations = "max_iterations"
	StatusBudget        = "char_budget"
	StatusCancelled     = "cancelled"
	StatusError         = "error"
)

// Metrics holds the Prometheus metrics of one process run
type Metrics struct {
	registry *prometheus.Registry

	SessionsTotal     *prometheus.CounterVec
	SessionDuration   *prometheus.HistogramVec
	SessionIterations *prometheus.HistogramVec
	ModelCharsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskpilot",
				Name:      "sessions_total",
				Help:      "Total number of agent sessions by outcome",
			},
			[]string{"agent", "status"},
		),
		SessionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskpilot",
				Name:      "session_duration_seconds",
				Help:      "Wall-clock duration of agent sessions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
			},
			[]string{"agent"},
		),
		SessionIterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskpilot",
				Name:      "session_iterations",
				Help:      "Agent steps taken per session",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
			[]string{"agent"},
		),
		ModelCharsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskpilot",
				Name:      "model_chars_total",
				Help:      "Characters exchanged with the model",
			},
			[]string{"agent"},
		),
	}

	registry.MustRegister(m.SessionsTotal, m.SessionDuration, m.SessionIterations, m.ModelCharsTotal)

	return m
}

// Status maps a session result to its status label
func Status(out *controller.Outcome, err error) string {
	switch {
	case errors.Is(err, agent.ErrCharBudgetExceeded):
		return StatusBudget
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	case err != nil:
		return StatusError
	case out != nil && out.Reason == controller.ReasonMaxIterations:
		return StatusMaxIterations
	default:
		return StatusFinished
	}
}

// ObserveSession records one finished session
func (m *Metrics) ObserveSession(agentName string, out *controller.Outcome, err error, d time.Duration) {
	m.SessionsTotal.WithLabelValues(agentName, Status(out, err)).Inc()
	m.SessionDuration.WithLabelValues(agentName).Observe(d.Seconds())
	if out != nil {
		m.SessionIterations.WithLabelValues(agentName).Observe(float64(out.Iterations))
		m.ModelCharsTotal.WithLabelValues(agentName).Add(float64(out.CharsUsed))
	}
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for a node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

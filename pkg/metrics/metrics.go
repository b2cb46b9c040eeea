// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ConversationsStartedTotal tracks conversations created.
	ConversationsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_started_total",
			Help: "Total conversations started",
		},
	)

	// ConversationsActive tracks conversations currently in the active state.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Number of conversations in the active state",
		},
	)

	// TurnsTotal tracks processed turns by input channel.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Total conversation turns processed",
		},
		[]string{"channel"},
	)

	// SentimentReadingsTotal tracks sentiment classifications by label.
	SentimentReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_readings_total",
			Help: "Total sentiment readings by label",
		},
		[]string{"label"},
	)

	// PolicyDecisionsTotal tracks escalation policy outcomes.
	PolicyDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_decisions_total",
			Help: "Total escalation policy decisions",
		},
		[]string{"decision"},
	)

	// EscalationsTotal tracks conversations escalated to a human.
	EscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escalations_total",
			Help: "Total conversations escalated to a human",
		},
	)

	// TicketsIssuedTotal tracks tickets by issuance source.
	TicketsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued, by source (external or local fallback)",
		},
		[]string{"source"},
	)

	// TurnDuration tracks end-to-end turn processing time.
	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "turn_duration_seconds",
			Help:    "End-to-end turn processing duration",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTurn records metrics for one processed turn.
func RecordTurn(channel, label, decision string, duration float64) {
	TurnsTotal.WithLabelValues(channel).Inc()
	SentimentReadingsTotal.WithLabelValues(label).Inc()
	PolicyDecisionsTotal.WithLabelValues(decision).Inc()
	TurnDuration.Observe(duration)
}

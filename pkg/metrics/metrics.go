// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "effisense_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Simulator
	SimulatorTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effisense_simulator_ticks_total",
			Help: "Simulator ticks by outcome (ok, idle, error)",
		},
		[]string{"outcome"},
	)

	SimulatedUsages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "effisense_simulated_usages_total",
			Help: "Usage records fabricated by the simulator",
		},
	)

	SimulatorUserErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "effisense_simulator_user_errors_total",
			Help: "Per-user simulator failures that were skipped",
		},
	)

	SimulatorNextDelay = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "effisense_simulator_next_delay_seconds",
			Help: "Delay before the next simulator tick",
		},
	)

	// Live updates
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "effisense_live_clients",
			Help: "Currently connected live-update sessions",
		},
	)

	LiveEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effisense_live_events_total",
			Help: "Usage events handed to each sink, by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	// Assistant
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effisense_assistant_requests_total",
			Help: "Assistant questions by outcome (answered, fallback)",
		},
		[]string{"outcome"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcome label values
const (
	OutcomeOK              = "ok"
	OutcomeUnknown         = "unknown_action"
	OutcomeInvalid         = "validation_error"
	OutcomeBackendError    = "backend_error"
	OutcomeConnectionError = "connection_error"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Business Metrics
var (
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatches_total",
			Help: "Action dispatches by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	FriendTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_transitions_total",
			Help: "Friend relationship transitions by action and result",
		},
		[]string{"action", "result"},
	)

	TerritoryClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "territory_claims_total",
			Help: "Territory claim attempts by status",
		},
		[]string{"status"},
	)
)

package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_retry_attempts_total",
			Help: "Retry attempts by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resilience_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"breaker"},
	)
)

// RecordRetryAttempt counts a single attempt of a retried operation.
func RecordRetryAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	retryAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordBreakerState exposes the current breaker state as a gauge.
func RecordBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	breakerState.WithLabelValues(name).Set(v)
}

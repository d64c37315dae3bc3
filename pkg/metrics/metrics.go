package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Upstream model call latency in milliseconds.
	LLMCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_latency_ms",
			Help:    "Model provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"operation", "status"},
	)

	// Processed commands by action type.
	CommandProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_command_processed_count",
			Help: "Total number of commands processed by the engine",
		},
		[]string{"action_type", "status"},
	)

	// Upstream circuit breaker state (0=closed, 1=open, 2=half-open).
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "llm_circuit_breaker_state",
			Help: "Circuit breaker state for the model provider (0=closed, 1=open, 2=half-open)",
		},
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordLLMCallLatency records one upstream model call.
func RecordLLMCallLatency(operation, status string, duration time.Duration) {
	LLMCallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

// IncrementCommandProcessed counts one processed command.
func IncrementCommandProcessed(actionType, status string) {
	CommandProcessedCount.WithLabelValues(actionType, status).Inc()
}

// SetBreakerState publishes the breaker state gauge.
func SetBreakerState(state int) {
	BreakerState.Set(float64(state))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks handler latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trailfinder_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// CompletionRequests counts calls to the chat completion service by outcome.
	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailfinder_completion_requests_total",
			Help: "Total number of chat completion calls",
		},
		[]string{"outcome"}, // "success", "error", "malformed", "fallback"
	)

	// CompletionTokens accumulates token usage reported by the completion service.
	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailfinder_completion_tokens_total",
			Help: "Tokens consumed by chat completion calls",
		},
		[]string{"kind"}, // "prompt", "completion"
	)

	// RecommendationsDropped counts ranked ids that matched no stored trail.
	RecommendationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trailfinder_recommendations_dropped_total",
			Help: "Recommendations discarded because their trail id is unknown or duplicated",
		},
	)

	// WeatherCacheLookups counts weather cache hits and misses.
	WeatherCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailfinder_weather_cache_lookups_total",
			Help: "Weather cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// CircuitBreakerState exposes breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trailfinder_circuit_breaker_state",
			Help: "Current circuit breaker state",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts breaker outcomes.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailfinder_circuit_breaker_requests_total",
			Help: "Requests passing through circuit breakers by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// ObserveUsage adds reported token usage to the completion counters.
func ObserveUsage(u TokenUsage) {
	if u.IsZero() {
		return
	}
	CompletionTokens.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	CompletionTokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}

// Package metrics registers the Prometheus metrics exposed by the service.
// Import it (blank import is enough) from the server entry point before the
// /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts completed requests labelled by endpoint
	// ("summarize", "chat") and outcome ("success", "not_found",
	// "generation_failed", "rate_limited", "invalid").
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_requests_total",
			Help: "Total requests processed, by endpoint and outcome.",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration observes end-to-end request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikisummary_request_duration_seconds",
			Help:    "End-to-end request duration in seconds.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// CacheHits counts cache hits per namespace ("article", "summary").
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_cache_hits_total",
			Help: "Total cache hits by cache namespace.",
		},
		[]string{"cache"},
	)

	// CacheMisses counts cache misses per namespace ("article", "summary").
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_cache_misses_total",
			Help: "Total cache misses by cache namespace.",
		},
		[]string{"cache"},
	)

	// RateLimitRejections counts requests rejected by admission control.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wikisummary_rate_limit_rejections_total",
			Help: "Total requests rejected by the sliding-window rate limiter.",
		},
	)

	// TokensInput counts prompt tokens sent to the model provider.
	TokensInput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_tokens_input_total",
			Help: "Total prompt tokens sent to the model provider.",
		},
		[]string{"provider"},
	)

	// TokensOutput counts completion tokens received from the provider.
	TokensOutput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_tokens_output_total",
			Help: "Total completion tokens received from the model provider.",
		},
		[]string{"provider"},
	)

	// CostUSD accumulates the estimated provider spend in US dollars.
	CostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikisummary_cost_usd_total",
			Help: "Estimated model provider cost in USD.",
		},
		[]string{"provider"},
	)
)

// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for production observability:
// - Moderation pipeline throughput and verdicts
// - Remote classifier latency and failures
// - Verdict cache efficiency
// - Upstream API calls (Spotify, Met, Safe Browsing)
// - Circuit breaker state
// - HTTP endpoint latency

var (
	// Moderation pipeline metrics

	ModerationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_moderation_checks_total",
			Help: "Total moderation checks by stage and verdict",
		},
		[]string{"stage", "verdict"}, // stage: prefilter, text_remote, image_vision, image_moderation
	)

	ModerationRemoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmuse_moderation_remote_duration_seconds",
			Help:    "Duration of remote moderation calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"}, // "openai-text", "openai-image", "vision-safesearch", "safebrowsing"
	)

	ModerationRemoteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_moderation_remote_failures_total",
			Help: "Total remote moderation call failures by provider and resolution",
		},
		[]string{"provider", "resolution"}, // resolution: fail_open, fail_closed
	)

	FilterItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_filter_items_total",
			Help: "Total items processed by the batch filter, by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: retained, blocked, dropped_invalid, skipped_kind
	)

	FilterBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmuse_filter_batch_duration_seconds",
			Help:    "Duration of full batch filtering in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// Verdict cache metrics

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_cache_hits_total",
			Help: "Total verdict cache hits by cache name",
		},
		[]string{"cache"}, // "text", "image"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_cache_misses_total",
			Help: "Total verdict cache misses by cache name",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodmuse_cache_entries",
			Help: "Current number of entries by cache name",
		},
		[]string{"cache"},
	)

	// Upstream API metrics

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_upstream_requests_total",
			Help: "Total upstream API requests by service and status code",
		},
		[]string{"service", "status"}, // service: spotify, met, safebrowsing
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmuse_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_retry_attempts_total",
			Help: "Total retry attempts by operation",
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodmuse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers by result",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	// HTTP API metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmuse_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodmuse_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// ObserveUpstreamRequest records a completed upstream API request.
func ObserveUpstreamRequest(service string, status int, duration time.Duration) {
	UpstreamRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	UpstreamRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

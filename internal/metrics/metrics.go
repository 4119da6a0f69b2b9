// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Local Store Metrics
	StoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactbar_store_hits_total",
			Help: "Total number of snapshot lookups served from the local store",
		},
	)

	StoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactbar_store_misses_total",
			Help: "Total number of snapshot lookups with no usable entry",
		},
	)

	StoreExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactbar_store_expired_total",
			Help: "Total number of entries found older than the TTL and scheduled for deletion",
		},
	)

	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_store_write_failures_total",
			Help: "Total number of swallowed local store failures",
		},
		[]string{"operation"}, // "get", "put", "delete"
	)

	StoreAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reactbar_store_available",
			Help: "Whether the local store backend opened successfully (1) or not (0)",
		},
	)

	// Counting Service Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reactbar_fetch_duration_seconds",
			Help:    "Duration of counting service calls in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"}, // "fetch", "toggle"
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_fetch_errors_total",
			Help: "Total number of failed counting service calls",
		},
		[]string{"operation"},
	)

	RateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactbar_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
	)

	// Poller Metrics
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_poll_ticks_total",
			Help: "Total number of poll ticks by result",
		},
		[]string{"result"}, // "success", "error", "skipped"
	)

	PollersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reactbar_pollers_active",
			Help: "Number of running pollers",
		},
	)

	// Render Pipeline Metrics
	BarsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_bars_rendered_total",
			Help: "Total number of bars rendered by provenance",
		},
		[]string{"provenance"}, // "cache", "live"
	)

	Highlights = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_highlights_total",
			Help: "Total number of highlighted categories by kind",
		},
		[]string{"kind"}, // "changed", "appeared", "disappeared"
	)

	Toggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactbar_toggles_total",
			Help: "Total number of toggle attempts by action",
		},
		[]string{"action"}, // "added", "removed", "replaced", "failed", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Reference Server Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordStoreLookup records the outcome of one snapshot lookup.
func RecordStoreLookup(hit, expired bool) {
	switch {
	case hit:
		StoreHits.Inc()
	case expired:
		StoreExpired.Inc()
		StoreMisses.Inc()
	default:
		StoreMisses.Inc()
	}
}

// RecordStoreFailure records a swallowed store error.
func RecordStoreFailure(operation string) {
	StoreWriteFailures.WithLabelValues(operation).Inc()
}

// SetStoreAvailable records the result of the one-time availability probe.
func SetStoreAvailable(available bool) {
	if available {
		StoreAvailable.Set(1)
		return
	}
	StoreAvailable.Set(0)
}

// RecordServiceCall records the duration and outcome of a counting service call.
func RecordServiceCall(operation string, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		FetchErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPollTick records one poll tick. skipped wins over err.
func RecordPollTick(skipped bool, err error) {
	switch {
	case skipped:
		PollTicks.WithLabelValues("skipped").Inc()
	case err != nil:
		PollTicks.WithLabelValues("error").Inc()
	default:
		PollTicks.WithLabelValues("success").Inc()
	}
}

// TrackPoller adjusts the active poller gauge.
func TrackPoller(started bool) {
	if started {
		PollersActive.Inc()
	} else {
		PollersActive.Dec()
	}
}

// RecordBarRendered counts one rendered bar.
func RecordBarRendered(provenance string) {
	BarsRendered.WithLabelValues(provenance).Inc()
}

// RecordHighlight counts one highlighted category.
func RecordHighlight(kind string) {
	Highlights.WithLabelValues(kind).Inc()
}

// RecordToggle counts one toggle attempt.
func RecordToggle(action string) {
	Toggles.WithLabelValues(action).Inc()
}

// RecordAPIRequest records a reference server request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

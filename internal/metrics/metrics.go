// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package metrics exposes Prometheus instrumentation for the gateway:
// request latency and throughput, upstream call outcomes, circuit
// breaker state, rate limiting and token cache activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pusaka_http_request_duration_seconds",
			Help:    "Duration of handled HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_http_requests_total",
			Help: "Total number of handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pusaka_http_requests_in_flight",
			Help: "Number of HTTP requests currently being handled",
		},
	)

	// Upstream calls (WordPress CMS, Supabase identity provider)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pusaka_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "operation"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_upstream_requests_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"upstream", "operation", "outcome"},
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pusaka_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Rate limiting

	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_rate_limit_denials_total",
			Help: "Total number of requests denied by the rate limiter",
		},
		[]string{"action"},
	)

	// Service token cache

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_token_refreshes_total",
			Help: "Total number of service credential exchanges",
		},
		[]string{"outcome"},
	)

	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pusaka_token_cache_hits_total",
			Help: "Total number of service token requests served from cache",
		},
	)

	// Error taxonomy

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pusaka_errors_total",
			Help: "Total number of normalized errors by kind",
		},
		[]string{"kind"},
	)
)

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, s).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, s).Inc()
}

// ObserveUpstreamRequest records one upstream call.
func ObserveUpstreamRequest(upstream, operation, outcome string, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(upstream, operation).Observe(duration.Seconds())
	UpstreamRequestsTotal.WithLabelValues(upstream, operation, outcome).Inc()
}

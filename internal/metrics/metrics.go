// Package metrics exposes the Prometheus collectors of the pricing service.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a successful resolution
const OutcomeOK = "ok"

var (
	resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_resolutions_total",
			Help: "Total number of fee resolutions by outcome",
		},
		[]string{"outcome"},
	)

	resolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_resolution_duration_seconds",
			Help:    "Duration of fee resolutions",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"outcome"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_cache_lookups_total",
			Help: "Reference data cache lookups by entity and result",
		},
		[]string{"entity", "result"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Outcome converts an error type name into a metric label
func Outcome(errType string) string {
	if errType == "" {
		return OutcomeOK
	}
	return strings.ToLower(errType)
}

// ObserveResolution records one resolution
func ObserveResolution(outcome string, d time.Duration) {
	resolutions.WithLabelValues(outcome).Inc()
	resolutionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// CacheHit records a cache hit for entity
func CacheHit(entity string) {
	cacheLookups.WithLabelValues(entity, "hit").Inc()
}

// CacheMiss records a cache miss for entity
func CacheMiss(entity string) {
	cacheLookups.WithLabelValues(entity, "miss").Inc()
}

// ObserveHTTP records one HTTP request
func ObserveHTTP(route, method, status string, d time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

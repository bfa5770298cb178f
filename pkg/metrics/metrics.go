// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TranscriptPagesTotal tracks pages fetched from the platform API.
	TranscriptPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_pages_fetched_total",
			Help: "Total message-history pages fetched",
		},
	)

	// TranscriptMessagesKept tracks messages that survived filtering.
	TranscriptMessagesKept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_messages_kept_total",
			Help: "Messages kept after normalization and filtering",
		},
	)

	// TranscriptMessagesDropped tracks messages removed by the noise filters.
	TranscriptMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_messages_dropped_total",
			Help: "Messages dropped during fetching",
		},
		[]string{"reason"},
	)

	// FetchDuration tracks full fetch-cycle duration.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcript_fetch_duration_seconds",
			Help:    "Duration of a full paginated fetch",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	// CacheLookups tracks result-cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_cache_lookups_total",
			Help: "Result cache lookups",
		},
		[]string{"result"},
	)

	// ReportsTotal tracks generated reports.
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_reports_total",
			Help: "Reports generated",
		},
		[]string{"status"},
	)

	// PairsPerReport tracks the size of reconstructed reports.
	PairsPerReport = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transcript_pairs_per_report",
			Help:    "Conversation pairs per generated report",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordFetch records a completed (or aborted) fetch cycle.
func RecordFetch(status string, seconds float64) {
	FetchDuration.WithLabelValues(status).Observe(seconds)
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

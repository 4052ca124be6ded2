// Package metrics defines the Prometheus instruments exported on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParseRequests counts link parse requests by resolved source kind.
	ParseRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_parse_requests_total",
		Help: "Link parse requests by source kind.",
	}, []string{"source_kind"})

	// ParseFailures counts parse requests that ended in a failure record.
	ParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_parse_failures_total",
		Help: "Link parse requests that produced a failure record.",
	}, []string{"source_kind"})

	// ParseDuration observes end-to-end parse latency.
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_parse_duration_seconds",
		Help:    "End-to-end link parse latency.",
		Buckets: prometheus.DefBuckets,
	})

	// ProviderRequests counts upstream travel-data provider calls.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_provider_requests_total",
		Help: "Upstream provider API calls.",
	}, []string{"provider"})

	// ProviderErrors counts upstream provider calls that failed.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_provider_errors_total",
		Help: "Upstream provider API calls that failed.",
	}, []string{"provider"})

	// ProviderDuration observes upstream provider call latency.
	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scout_provider_duration_seconds",
		Help:    "Upstream provider API call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// CacheHits counts provider cache hits by provider.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_cache_hits_total",
		Help: "Provider cache hits.",
	}, []string{"provider"})

	// AggregationRequests counts travel-data aggregation runs.
	AggregationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_aggregation_requests_total",
		Help: "Travel data aggregation runs.",
	})

	// AggregationDuration observes full aggregation fan-out latency.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_aggregation_duration_seconds",
		Help:    "Full aggregation fan-out latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})
)

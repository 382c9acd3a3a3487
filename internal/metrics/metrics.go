// Package metrics provides Prometheus metrics for the aggregation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream outcomes
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeCacheHit = "cache_hit"
)

var (
	// UpstreamRequestsTotal counts upstream calls by upstream and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallens",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream requests",
		},
		[]string{"upstream", "outcome"},
	)

	// AggregationDuration measures end-to-end aggregation time.
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "locallens",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of news aggregation in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AggregatedItems observes result sizes.
	AggregatedItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "locallens",
			Name:      "aggregated_items",
			Help:      "Distribution of items returned per aggregation",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)
)

// RecordUpstream records one upstream call.
func RecordUpstream(upstream, outcome string) {
	UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
}

// RecordAggregation records a completed aggregation.
func RecordAggregation(seconds float64, items int) {
	AggregationDuration.Observe(seconds)
	AggregatedItems.Observe(float64(items))
}

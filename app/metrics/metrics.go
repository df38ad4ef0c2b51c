// Package metrics provides Prometheus metrics for the liveblog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "liveblog"

// Parse outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFatal    = "fatal"
	OutcomeMemoized = "memoized"
)

var (
	// ParseTotal counts parse runs by outcome.
	ParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Total number of document parses",
		},
		[]string{"outcome"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Duration of document parses in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Posts tracks the number of posts in the current state.
	Posts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "posts",
			Help:      "Number of posts in the current feed",
		},
		[]string{"kind"},
	)

	// FeedStatus is 1 for the status of the current feed and 0 otherwise.
	FeedStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_status",
			Help:      "Status of the current feed (1 = active)",
		},
		[]string{"status"},
	)

	FetchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_fetch_errors_total",
			Help:      "Total number of failed document fetches",
		},
	)

	DocumentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of the last fetched document in bytes",
		},
	)
)

var statuses = []string{"before", "during", "after", "error"}

// RecordParse records one parse run.
func RecordParse(outcome string, duration float64) {
	ParseTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeMemoized {
		ParseDuration.Observe(duration)
	}
}

// RecordState publishes the shape of the state now being served.
func RecordState(status string, published, drafts int) {
	for _, s := range statuses {
		value := 0.0
		if s == status {
			value = 1
		}
		FeedStatus.WithLabelValues(s).Set(value)
	}
	Posts.WithLabelValues("published").Set(float64(published))
	Posts.WithLabelValues("draft").Set(float64(drafts))
}

// RecordFetchError records a failed document fetch.
func RecordFetchError() {
	FetchErrorsTotal.Inc()
}

func RecordDocumentSize(size int) {
	DocumentBytes.Set(float64(size))
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	PathRemote   = "remote"
	PathFallback = "fallback"
)

var (
	// Classifications served, by path and resulting category.
	ClassificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_classifications_total",
			Help: "Total number of emails classified",
		},
		[]string{"path", "category"},
	)

	// Remote model failures that were recovered by the heuristic.
	RemoteFailureCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_remote_classification_failures_total",
			Help: "Total number of failed remote classification attempts",
		},
	)

	RemoteCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_remote_call_latency_ms",
			Help:    "Remote model call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"provider", "status"},
	)

	StoredCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_stored_total",
			Help: "Total number of classified emails persisted",
		},
		[]string{"category"},
	)

	StorageFailureCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_storage_failures_total",
			Help: "Total number of classified emails that could not be persisted",
		},
	)
)

func IncrementClassification(path, category string) {
	ClassificationCount.WithLabelValues(path, category).Inc()
}

func IncrementRemoteFailure() {
	RemoteFailureCount.Inc()
}

func RecordRemoteCallLatency(provider, status string, duration time.Duration) {
	RemoteCallLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

func IncrementStored(category string) {
	StoredCount.WithLabelValues(category).Inc()
}

func IncrementStorageFailure() {
	StorageFailureCount.Inc()
}

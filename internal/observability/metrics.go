package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_coder_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records document store latency by operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_coder_store_query_latency_seconds",
		Help:    "Document store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// PostOperations counts post service operations by outcome.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_coder_post_operations_total",
		Help: "Total number of post operations by outcome",
	}, []string{"operation", "outcome"})

	// EventsPublished counts post events handed to the broker.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_coder_post_events_published_total",
		Help: "Total number of post events published",
	}, []string{"type", "outcome"})
)

// ObserveQuery records the latency of a store query.
func ObserveQuery(operation, collection string, start time.Time) {
	StoreQueryLatency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, collection, start)
	}
}

// RecordPostOperation increments the operation counter. An empty outcome is
// recorded as "ok".
func RecordPostOperation(operation string, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	PostOperations.WithLabelValues(operation, outcome).Inc()
}

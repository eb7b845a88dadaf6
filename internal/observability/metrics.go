package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionRuns counts ingestion cycles by trigger ("admin" or "warmup").
	IngestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkboard_ingestion_runs_total",
		Help: "Total number of ingestion cycles by trigger",
	}, []string{"trigger"})

	// PostsIngested counts posts actually inserted by the store per source.
	PostsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkboard_posts_ingested_total",
		Help: "Total number of new posts persisted, by source",
	}, []string{"source"})

	// AdapterFailures counts whole-batch adapter failures by source.
	AdapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkboard_adapter_failures_total",
		Help: "Total number of source adapter batch failures",
	}, []string{"source"})

	// AdapterItemsDropped counts per-item drops inside multi-step adapters.
	AdapterItemsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkboard_adapter_items_dropped_total",
		Help: "Total number of items dropped during adapter mapping",
	}, []string{"source", "reason"})

	// StoreWriteLatency records durable post collection write latency.
	StoreWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkboard_store_write_latency_seconds",
		Help:    "Durable post collection write latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// RedisErrors counts Redis cache errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

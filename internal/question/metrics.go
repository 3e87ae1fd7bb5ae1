package question

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trivia",
		Subsystem: "pipeline",
		Name:      "batches_served_total",
		Help:      "Batches served, labeled by the tier that satisfied the request.",
	}, []string{"source"})

	generationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trivia",
		Subsystem: "pipeline",
		Name:      "generation_seconds",
		Help:      "Wall-clock latency of generative-tier fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	storeJobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Subsystem: "pipeline",
		Name:      "store_jobs_dropped_total",
		Help:      "Background persist/replenish jobs dropped because the queue was full.",
	})
)

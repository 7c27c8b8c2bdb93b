package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_batches_submitted_total",
			Help: "Total number of batch submissions by outcome",
		},
		[]string{"outcome"},
	)

	submitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_submit_retries_total",
			Help: "Total number of submission retry attempts",
		},
	)

	submitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_submit_duration_seconds",
			Help:    "Time taken to deliver one batch including retries",
			Buckets: prometheus.DefBuckets,
		},
	)
)

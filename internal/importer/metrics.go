package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_files_received_total",
			Help: "Total number of customer import files parsed",
		},
	)

	rowsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_rows_parsed_total",
			Help: "Total number of data rows that passed validation",
		},
	)

	rowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_rejected_total",
			Help: "Total number of data rows rejected by validation",
		},
		[]string{"reason"},
	)

	parseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_parse_duration_seconds",
			Help:    "Time taken to parse and validate one uploaded file",
			Buckets: prometheus.DefBuckets,
		},
	)
)

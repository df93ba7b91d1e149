package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Throughput metrics - Track build volume
var (
	TransactionsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "initiation_transactions_built_total",
			Help: "Total number of unsigned transactions built, by form kind",
		},
		[]string{"form"},
	)

	OperationsPerTransaction = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "initiation_operations_per_transaction",
		Help:    "Number of manage-data operations per built transaction",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	RelayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "initiation_relay_requests_total",
			Help: "Total number of signing-relay requests, by outcome",
		},
		[]string{"outcome"},
	)

	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "initiation_upload_bytes",
		Help:    "Size of files uploaded to the content store",
		Buckets: []float64{1024, 10240, 102400, 524288, 1048576},
	})
)

// Performance metrics - Track ledger read latency
var (
	SnapshotFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "initiation_snapshot_fetch_duration_seconds",
		Help:    "Time taken to fetch and decode one account snapshot",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotFetchEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Name: "initiation_snapshot_fetch_empty_total",
		Help: "Total number of snapshot fetches that fell back to empty",
	})
)

// Error metrics - Track failures
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "initiation_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component"},
	)
)

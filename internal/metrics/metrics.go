// Package metrics provides Prometheus metrics for the yield history pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsScanned counts activity log records passed to the extractor.
	RecordsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmyield",
			Name:      "records_scanned_total",
			Help:      "Total number of activity log records scanned for yield events",
		},
	)

	// EventsExtracted counts yield events reconstructed from activity logs.
	EventsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmyield",
			Name:      "events_extracted_total",
			Help:      "Total number of yield events reconstructed",
		},
	)

	// RecordsSkipped counts yield-update records that could not be parsed.
	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmyield",
			Name:      "records_skipped_total",
			Help:      "Total number of yield-update records skipped",
		},
		[]string{"reason"},
	)

	// OperationDuration measures history operations.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "farmyield",
			Name:      "operation_duration_seconds",
			Help:      "Duration of yield history operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// SourceErrors counts failures fetching activity logs.
	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmyield",
			Name:      "source_errors_total",
			Help:      "Total number of activity log fetch failures",
		},
		[]string{"source"},
	)

	// TreesPerSummary observes how many trees a plot summary covers.
	TreesPerSummary = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "farmyield",
			Name:      "summary_trees",
			Help:      "Distribution of tree counts per plot summary",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 200},
		},
	)
)

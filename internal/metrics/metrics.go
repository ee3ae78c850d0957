// Package metrics exposes Prometheus metrics for the snapshot daemon.
// Everything registers against the default registry and is served by the
// HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompressionsTotal counts compression passes by mode.
	CompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "compressions_total",
			Help:      "Total number of snapshot compression passes",
		},
		[]string{"mode"},
	)

	// CompressionDuration tracks how long one compression pass takes.
	CompressionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "compression_duration_seconds",
			Help:      "Duration of snapshot compression passes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// LinesIn counts raw snapshot lines consumed.
	LinesIn = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "lines_in_total",
			Help:      "Total raw outline lines consumed",
		},
	)

	// LinesOut counts compressed lines emitted.
	LinesOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "lines_out_total",
			Help:      "Total compressed outline lines emitted",
		},
	)

	// FoldGroups counts fold groups produced.
	FoldGroups = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "fold_groups_total",
			Help:      "Total fold groups produced across all passes",
		},
	)

	// CompressionRatio observes lines_out / lines_in per pass.
	CompressionRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapshotd",
			Subsystem: "outline",
			Name:      "compression_ratio",
			Help:      "Per-pass ratio of emitted to consumed lines",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 20),
		},
	)

	// Searches counts snapshot regex searches by result.
	// Labels: result (ok, invalid_pattern, not_found)
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "snapshot",
			Name:      "searches_total",
			Help:      "Total snapshot search operations",
		},
		[]string{"result"},
	)

	// Diffs counts snapshot diff operations by result.
	// Labels: result (ok, first_snapshot, not_found)
	Diffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshotd",
			Subsystem: "snapshot",
			Name:      "diffs_total",
			Help:      "Total snapshot diff operations",
		},
		[]string{"result"},
	)
)

// RecordCompression updates the compression metrics for one pass.
func RecordCompression(mode string, linesIn, linesOut, groups int, seconds float64) {
	CompressionsTotal.WithLabelValues(mode).Inc()
	CompressionDuration.Observe(seconds)
	LinesIn.Add(float64(linesIn))
	LinesOut.Add(float64(linesOut))
	FoldGroups.Add(float64(groups))
	if linesIn > 0 {
		CompressionRatio.Observe(float64(linesOut) / float64(linesIn))
	}
}

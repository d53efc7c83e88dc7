// Package metrics exposes Prometheus instruments for pipeline runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// RunsTotal counts pipeline runs by trigger (job, api) and status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resampler_runs_total",
			Help: "Total number of resampling runs",
		},
		[]string{"trigger", "status"},
	)

	// RunDuration measures pipeline duration in seconds.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resampler_run_duration_seconds",
			Help:    "Resampling run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"trigger"},
	)

	// OutputRows counts rows produced by successful runs.
	OutputRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resampler_output_rows_total",
			Help: "Total number of rows produced by resampling runs",
		},
		[]string{"trigger"},
	)

	// Entities tracks the entity count of the most recent per-edge run.
	Entities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resampler_entities",
			Help: "Number of entities in the most recent per-edge run",
		},
		[]string{"trigger"},
	)

	// SourceRows counts rows read from input sources.
	SourceRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resampler_source_rows_total",
			Help: "Total number of rows read from input sources",
		},
		[]string{"source"},
	)
)

// RecordRun records one finished run.
func RecordRun(trigger string, err error, duration float64, rows int) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailed
	}
	RunsTotal.WithLabelValues(trigger, status).Inc()
	RunDuration.WithLabelValues(trigger).Observe(duration)
	if err == nil {
		OutputRows.WithLabelValues(trigger).Add(float64(rows))
	}
}

// RecordEntities records the entity count of a per-edge run.
func RecordEntities(trigger string, n int) {
	Entities.WithLabelValues(trigger).Set(float64(n))
}

// RecordSourceRows records rows loaded from source.
func RecordSourceRows(source string, n int) {
	SourceRows.WithLabelValues(source).Add(float64(n))
}

// Package metrics holds the Prometheus collectors of a pipeline run.
//
// Collectors are registered on a caller supplied registry so tests and the
// serve command can each own one. After a batch run the registry is written
// in text exposition format with WriteTextfile, where a node exporter
// textfile collector can pick it up.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "healthplots/internal/errors"
)

const namespace = "healthplots"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics groups the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	rows          *prometheus.GaugeVec
	dropped       *prometheus.CounterVec
	chartDuration *prometheus.HistogramVec
	charts        *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// New registers the pipeline collectors on registry. A nil registry gets a
// fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		rows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the last loaded dataset per stage (read, cleaned, valid)",
		}, []string{"stage"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped by validation, by failing column",
		}, []string{"column"}),
		chartDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_duration_seconds",
			Help:      "Time to render and save one chart",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"status"}),
		charts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_total",
			Help:      "Charts attempted, by chart file and status",
		}, []string{"chart", "status"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by status",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full pipeline run",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// ObserveChart records one chart job.
func (m *Metrics) ObserveChart(name string, d time.Duration, err error) {
	s := status(err)
	m.chartDuration.WithLabelValues(s).Observe(d.Seconds())
	m.charts.WithLabelValues(name, s).Inc()
}

// ObserveDataset records row counts of a load and the validation drops.
func (m *Metrics) ObserveDataset(read, cleaned, valid int, failures map[string]int) {
	m.rows.WithLabelValues("read").Set(float64(read))
	m.rows.WithLabelValues("cleaned").Set(float64(cleaned))
	m.rows.WithLabelValues("valid").Set(float64(valid))
	for col, n := range failures {
		m.dropped.WithLabelValues(col).Add(float64(n))
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(d time.Duration, err error) {
	m.runs.WithLabelValues(status(err)).Inc()
	m.runDuration.Observe(d.Seconds())
}

// WriteTextfile writes every metric of the registry to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create metrics directory", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return apperrors.NewStorageError("write metrics textfile", err)
	}
	return nil
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	ScansTotal      prometheus.Counter
	ScanDuration    prometheus.Histogram
	PipelineRunning prometheus.Gauge

	FilesAccepted prometheus.Counter
	FilesSkipped  *prometheus.CounterVec // label: reason (classification skip reasons)
	FilesFailed   prometheus.Counter     // header rejections and I/O failures

	RowsAccepted  prometheus.Counter
	RowsRejected  *prometheus.CounterVec // label: field (geo_type, geo_id, value, stderr, sample_size, csv)
	RowsPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "scans_total",
			Help:      "Total receiving-directory scans.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "signal_ingest",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a complete discover-validate-publish scan.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "signal_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		FilesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "files_accepted_total",
			Help:      "Files whose path metadata classified successfully.",
		}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "files_skipped_total",
			Help:      "Paths excluded during discovery, by skip reason.",
		}, []string{"reason"}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "files_failed_total",
			Help:      "Files rejected after discovery (bad header or unreadable).",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "rows_accepted_total",
			Help:      "Data rows that passed all field checks.",
		}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "rows_rejected_total",
			Help:      "Data rows rejected, by failing field.",
		}, []string{"field"}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "signal_ingest",
			Name:      "rows_published_total",
			Help:      "Validated rows handed to the downstream sink.",
		}),
	}

	prometheus.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.PipelineRunning,
		m.FilesAccepted,
		m.FilesSkipped,
		m.FilesFailed,
		m.RowsAccepted,
		m.RowsRejected,
		m.RowsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ScansTotal:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "scans_total"}),
		ScanDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "signal_ingest", Name: "scan_duration_seconds"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "signal_ingest", Name: "pipeline_running"}),
		FilesAccepted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "files_accepted_total"}),
		FilesSkipped:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "files_skipped_total"}, []string{"reason"}),
		FilesFailed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "files_failed_total"}),
		RowsAccepted:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "rows_accepted_total"}),
		RowsRejected:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "rows_rejected_total"}, []string{"field"}),
		RowsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "signal_ingest", Name: "rows_published_total"}),
	}
}

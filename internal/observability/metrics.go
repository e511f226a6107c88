package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// index pipeline.
type Metrics struct {
	DatasetsProcessed prometheus.Counter
	DatasetsFailed    prometheus.Counter
	ExportErrors      prometheus.Counter
	AlphaSkipped      prometheus.Counter
	PipelineRunning   prometheus.Gauge

	ComputeDuration prometheus.Histogram
	FieldTimeSteps  prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecindex",
			Name:      "datasets_processed_total",
			Help:      "Total datasets with indices computed and exported.",
		}),
		DatasetsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecindex",
			Name:      "datasets_failed_total",
			Help:      "Total datasets skipped because loading or computation failed.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecindex",
			Name:      "export_errors_total",
			Help:      "Total datasets whose results could not be written.",
		}),
		AlphaSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecindex",
			Name:      "alpha_skipped_total",
			Help:      "Total datasets exported without an alpha fit for lack of DJF seasons.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecindex",
			Name:      "pipeline_running",
			Help:      "1 while the batch run is active, 0 otherwise.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecindex",
			Name:      "compute_duration_seconds",
			Help:      "Duration of one load-decompose-project-fit cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FieldTimeSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecindex",
			Name:      "field_time_steps",
			Help:      "Number of time steps per loaded anomaly field.",
			Buckets:   []float64{120, 360, 600, 1200, 1800, 2400},
		}),
	}

	prometheus.MustRegister(
		m.DatasetsProcessed,
		m.DatasetsFailed,
		m.ExportErrors,
		m.AlphaSkipped,
		m.PipelineRunning,
		m.ComputeDuration,
		m.FieldTimeSteps,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetsProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecindex", Name: "datasets_processed_total"}),
		DatasetsFailed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecindex", Name: "datasets_failed_total"}),
		ExportErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecindex", Name: "export_errors_total"}),
		AlphaSkipped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecindex", Name: "alpha_skipped_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecindex", Name: "pipeline_running"}),
		ComputeDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecindex", Name: "compute_duration_seconds"}),
		FieldTimeSteps:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecindex", Name: "field_time_steps"}),
	}
}

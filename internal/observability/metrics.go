package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// detection pipeline.
type Metrics struct {
	BatchesConsumed   prometheus.Counter
	ReportsProduced   prometheus.Counter
	TransformErrors   prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Detection metrics.
	ReadingsScored prometheus.Counter
	AlertsEmitted  prometheus.Counter
	RiskScore      prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		BatchesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "batches_consumed_total",
			Help:      "Total site batches read from the source topic.",
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "reports_produced_total",
			Help:      "Total risk reports written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "transform_errors_total",
			Help:      "Total batches that failed parsing, validation, or scoring.",
		}),
		DuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "duplicates_skipped_total",
			Help:      "Redelivered batches dropped by the seen-report cache.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_detect",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_detect",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_detect",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ReadingsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "readings_scored_total",
			Help:      "Total sensor readings run through the detector.",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_detect",
			Name:      "alerts_emitted_total",
			Help:      "Total alert events across all scored batches.",
		}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_detect",
			Name:      "risk_score",
			Help:      "Distribution of per-batch maximum risk scores.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 65, 70, 80, 90, 100},
		}),
	}

	prometheus.MustRegister(
		m.BatchesConsumed,
		m.ReportsProduced,
		m.TransformErrors,
		m.DuplicatesSkipped,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ReadingsScored,
		m.AlertsEmitted,
		m.RiskScore,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		BatchesConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "batches_consumed_total"}),
		ReportsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "reports_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "transform_errors_total"}),
		DuplicatesSkipped:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "duplicates_skipped_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire_detect", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_detect", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_detect", Name: "batch_processing_duration_seconds"}),
		ReadingsScored:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "readings_scored_total"}),
		AlertsEmitted:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_detect", Name: "alerts_emitted_total"}),
		RiskScore:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_detect", Name: "risk_score"}),
	}
}

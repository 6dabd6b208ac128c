package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// render pipeline.
type Metrics struct {
	RequestsConsumed  prometheus.Counter
	ArtifactsProduced prometheus.Counter
	RenderErrors      prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize           prometheus.Histogram
	BatchRenderDuration prometheus.Histogram

	// Per-chart metrics.
	RenderDuration *prometheus.HistogramVec // label: chart
	CacheLookups   *prometheus.CounterVec   // label: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metplot",
			Name:      "requests_consumed_total",
			Help:      "Total chart requests read from the request topic.",
		}),
		ArtifactsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metplot",
			Name:      "artifacts_produced_total",
			Help:      "Total artifact records written to the artifact topic.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metplot",
			Name:      "render_errors_total",
			Help:      "Total chart requests that failed to render.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metplot",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metplot",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metplot",
			Name:      "batch_render_duration_seconds",
			Help:      "Duration of a complete batch extract-render-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metplot",
			Name:      "render_duration_seconds",
			Help:      "Time to render a single chart, by chart kind.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"chart"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metplot",
			Name:      "artifact_cache_total",
			Help:      "Artifact cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ArtifactsProduced,
		m.RenderErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchRenderDuration,
		m.RenderDuration,
		m.CacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsConsumed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "metplot", Name: "requests_consumed_total"}),
		ArtifactsProduced:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "metplot", Name: "artifacts_produced_total"}),
		RenderErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "metplot", Name: "render_errors_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "metplot", Name: "pipeline_running"}),
		BatchSize:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "metplot", Name: "batch_size"}),
		BatchRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "metplot", Name: "batch_render_duration_seconds"}),
		RenderDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "metplot", Name: "render_duration_seconds"}, []string{"chart"}),
		CacheLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "metplot", Name: "artifact_cache_total"}, []string{"result"}),
	}
}

package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all build-pipeline metrics shared by the engine, the
// data source client, and the exporter.
type Metrics struct {
	// Build metrics
	BuildsTotal   *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	BuildErrors   *prometheus.CounterVec

	// Graph metrics
	TypesProcessed     prometheus.Counter
	RecordsProcessed   *prometheus.CounterVec
	RelationshipsTotal *prometheus.CounterVec

	// Export metrics
	ExportsTotal *prometheus.CounterVec

	// Data source metrics
	SourceRequests        *prometheus.CounterVec
	SourceRequestDuration *prometheus.HistogramVec
	SourceConnected       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all build-pipeline metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Build metrics
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "builds",
				Name:      "total",
				Help:      "Total number of graph builds by outcome",
			},
			[]string{"status"},
		),

		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docgraph",
				Subsystem: "builds",
				Name:      "duration_seconds",
				Help:      "Build phase duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"phase"},
		),

		BuildErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "builds",
				Name:      "item_failures_total",
				Help:      "Total number of per-item failures by build stage",
			},
			[]string{"stage"},
		),

		// Graph metrics
		TypesProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "graph",
				Name:      "types_total",
				Help:      "Total number of entity types added to the graph",
			},
		),

		RecordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "graph",
				Name:      "records_total",
				Help:      "Total number of records added to the graph",
			},
			[]string{"doctype"},
		),

		RelationshipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "graph",
				Name:      "edges_total",
				Help:      "Total number of edges added to the graph",
			},
			[]string{"kind"},
		),

		// Export metrics
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "exports",
				Name:      "total",
				Help:      "Total number of export attempts by format and outcome",
			},
			[]string{"format", "status"},
		),

		// Data source metrics
		SourceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgraph",
				Subsystem: "source",
				Name:      "requests_total",
				Help:      "Total number of data source requests by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),

		SourceRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docgraph",
				Subsystem: "source",
				Name:      "request_duration_seconds",
				Help:      "Data source request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		SourceConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "docgraph",
				Subsystem: "source",
				Name:      "connected",
				Help:      "Data source connection status (0=disconnected, 1=connected)",
			},
		),
	}
}

// RecordBuild increments the build counter with its outcome
func (c *Metrics) RecordBuild(status string) {
	c.BuildsTotal.WithLabelValues(status).Inc()
}

// RecordPhaseDuration records how long a build phase took
func (c *Metrics) RecordPhaseDuration(phase string, duration time.Duration) {
	c.BuildDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordItemFailure increments the per-item failure counter for a stage
func (c *Metrics) RecordItemFailure(stage string) {
	c.BuildErrors.WithLabelValues(stage).Inc()
}

// RecordTypeAdded increments the entity type counter
func (c *Metrics) RecordTypeAdded() {
	c.TypesProcessed.Inc()
}

// RecordRecordAdded increments the record counter for a type
func (c *Metrics) RecordRecordAdded(doctype string) {
	c.RecordsProcessed.WithLabelValues(doctype).Inc()
}

// RecordEdgeAdded increments the edge counter for a relationship kind
func (c *Metrics) RecordEdgeAdded(kind string) {
	c.RelationshipsTotal.WithLabelValues(kind).Inc()
}

// RecordExport increments the export counter with its outcome
func (c *Metrics) RecordExport(format, status string) {
	c.ExportsTotal.WithLabelValues(format, status).Inc()
}

// RecordSourceRequest records a data source request and its duration
func (c *Metrics) RecordSourceRequest(endpoint, status string, duration time.Duration) {
	c.SourceRequests.WithLabelValues(endpoint, status).Inc()
	c.SourceRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordSourceStatus updates data source connection status
func (c *Metrics) RecordSourceStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.SourceConnected.Set(value)
}

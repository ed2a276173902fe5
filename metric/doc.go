// Package metric provides Prometheus-based metrics collection and an
// HTTP scrape endpoint for the graph build pipeline.
//
// The package offers a centralized metrics registry managing both core
// build metrics (build outcomes, graph growth, data source traffic) and
// custom component-specific metrics such as cache and worker pool counters.
//
// # Basic Usage
//
// Setting up metrics collection:
//
//	registry := metric.NewMetricsRegistry()
//
//	// Record core build metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordBuild("success")
//	coreMetrics.RecordPhaseDuration("schema", elapsed)
//	coreMetrics.RecordEdgeAdded("links_to")
//
// Gather collected metrics through the underlying Prometheus registry:
//
//	families, err := registry.PrometheusRegistry().Gather()
//
// Or expose them for scraping:
//
//	server := metric.NewServer(":9090", "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Error("metrics server failed", "error", err)
//	    }
//	}()
//	defer server.Stop()
//
// # Core Metrics
//
// The package automatically registers core build metrics tracking:
//
//   - Build lifecycle: builds_total{status}, builds_duration_seconds{phase}
//   - Per-item failures: builds_item_failures_total{stage}
//   - Graph growth: graph_types_total, graph_records_total{doctype}, graph_edges_total{kind}
//   - Export outcomes: exports_total{format,status}
//   - Data source traffic: source_requests_total{endpoint,status},
//     source_request_duration_seconds{endpoint}, source_connected
//
// All core metrics use the namespace "docgraph":
//   - docgraph_builds_total{status="success"}
//   - docgraph_graph_edges_total{kind="instance_of"}
//   - docgraph_source_connected
//
// # Component Metrics
//
// Components register their own metrics through the registry:
//
//	hits := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "cache_hits_total",
//	    Help: "Total number of cache hits",
//	})
//	err := registry.RegisterCounter("schema-cache", "cache_hits_total", hits)
//
// Registration returns an error for duplicate metric names, both from the
// registry's own tracking and from underlying Prometheus conflicts.
//
// # MetricsRegistrar Interface
//
// Components accept the MetricsRegistrar interface for dependency injection:
//
//	func NewSchemaCache(metrics metric.MetricsRegistrar) *SchemaCache {
//	    counter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "schema_fetches_total",
//	        Help: "Total schema fetches",
//	    })
//	    metrics.RegisterCounter("schema-cache", "schema_fetches_total", counter)
//	    ...
//	}
//
// This enables testing with mock registrars and keeps components decoupled
// from the concrete registry.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
package metric

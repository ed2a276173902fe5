// Package docgraph builds knowledge graphs over business documents,
// combining schema-level relationship discovery with instance-level
// record sampling.
//
// # Philosophy: Two-Level Graph
//
// docgraph models an ERP backend at two independent levels:
//
// Level 1 - Type Level (schema driven):
//   - Document types: every type the backend lists becomes a node
//   - Link fields: foreign-key style references become links_to edges
//   - Child tables: parent-child composition becomes has_child_table edges
//   - Curated associations: well-known business pairings fill schema gaps
//
// Level 2 - Instance Level (record driven):
//   - Sampled records: concrete documents become nodes tied to their
//     type through instance_of edges
//   - Field references: string values naming other sampled records
//     become references_<field> edges
//
// The levels are independent. A type graph is useful without a single
// record, and record sampling never alters type-level structure.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            Build Engine             │  Phase orchestration
//	│ (connect, types, records, exports)  │  Failure accumulation
//	└─────────────────────────────────────┘
//	            ↓ orchestrates
//	┌──────────────┐    ┌─────────────────┐
//	│  Data Source │ →  │ Schema Resolver │  Cached schema lookups
//	│   (Frappe)   │    │ (links, tables) │  Curated associations
//	└──────────────┘    └─────────────────┘
//	            ↓ populate
//	┌─────────────────────────────────────┐
//	│            Graph Store              │  Typed nodes, keyed edges
//	└─────────────────────────────────────┘
//	            ↓ feeds
//	┌──────────────┐    ┌─────────────────┐
//	│  Analytics   │    │    Exporters    │  node-link JSON,
//	│ (statistics) │    │ (three formats) │  GraphML, GEXF
//	└──────────────┘    └─────────────────┘
//
// # Framework Packages
//
// Graph construction:
//   - engine: build orchestration across connectivity, type and record phases
//   - graph: in-memory property graph store
//   - resolver: schema relationship resolution with caching and prefetch
//   - vocabulary: edge kinds, node levels and curated associations
//
// Data access:
//   - datasource: backend-neutral source contract
//   - datasource/frappe: Frappe/ERPNext REST client with port discovery
//
// Results:
//   - analytics: node, edge and centrality statistics
//   - export: node-link JSON, GraphML and GEXF serialization
//
// Infrastructure:
//   - config: layered configuration loading and validation
//   - metric: Prometheus metrics and scrape endpoint
//   - errors: structured error handling with classification
//   - pkg/timestamp: backend timestamp parsing
//   - testutil: scripted data source for tests
//
// # Usage Patterns
//
// Basic build:
//
//	source, _ := frappe.NewClient(frappe.Config{BaseURL: "http://localhost:8000"})
//	res, _ := resolver.New(source)
//
//	eng, _ := engine.NewEngine(engine.Dependencies{
//	    Source:   source,
//	    Resolver: res,
//	    Store:    graph.NewStore(),
//	    Exporter: &export.Exporter{Dir: "out"},
//	})
//
//	report, err := eng.BuildAll(ctx)
//
// Inspecting the graph directly:
//
//	stats := analytics.Compute(store.Nodes(), store.Edges())
//	fmt.Println(stats.Nodes, stats.Edges, stats.MostConnected)
//
// # Design Principles
//
// Separation of concerns:
//   - Fetching schemas is distinct from interpreting relationships
//   - Building the graph is distinct from serializing it
//
// Partial results over hard failures:
//   - A type whose schema fetch fails still appears as a bare node
//   - Item failures accumulate in the build report instead of aborting
//
// Testability:
//   - Explicit dependencies (no globals)
//   - Scripted data source for offline tests
//
// # Version
//
// Current: v0.1.0
package docgraph

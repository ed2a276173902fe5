// Package graph holds the in-memory multigraph a build assembles: type
// nodes for entity schemas, record nodes for sampled documents, and
// directed typed edges between them.
//
// The Store never rejects a mutation. Upserts merge into existing
// nodes, and AddEdge creates bare stub endpoints when needed, so the
// discovery engine can add relationships in any order without
// pre-creating nodes. Record nodes are never orphaned: entering the
// store wires them to their type with an instance_of edge exactly once.
//
// Reads hand out detached snapshots with materialized attribute maps.
// Analytics and export consume those snapshots; nothing outside this
// package touches live store internals.
package graph

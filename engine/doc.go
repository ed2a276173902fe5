// Package engine builds the two-layer business graph.
//
// A full build runs in phases:
//
//  1. Connectivity check. An unreachable source aborts the build;
//     nothing else does.
//  2. Type-level build in two passes: one annotated node per listed
//     type in listing order (schemas prefetched through the resolver
//     pool), then links_to and has_child_table edges between types
//     that both exist in the graph.
//  3. Instance-level build per configured key type: bounded record
//     samples fetched concurrently, one node per named record, and
//     references_<field> edges from pairwise name matching within the
//     batch.
//  4. Statistics over the finished graph.
//  5. Exports in the configured formats.
//
// Per-item problems are recorded as ItemFailures and the batch
// continues; batch results and the BuildAll report carry the
// accumulated failures alongside the counts. The engine holds no
// state of its own beyond its dependencies: construct one per build
// with NewEngine and a fresh graph store.
package engine

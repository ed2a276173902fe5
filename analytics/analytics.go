// Package analytics computes structural statistics over a built graph:
// node and edge counts, per-kind histograms, and the most connected
// nodes by degree centrality.
package analytics

import (
	"sort"

	"github.com/c360/docgraph/graph"
)

// topConnected caps the MostConnected ranking.
const topConnected = 10

// Statistics summarizes one built graph.
type Statistics struct {
	Nodes             int            `json:"nodes"`
	Edges             int            `json:"edges"`
	NodeTypes         map[string]int `json:"node_types"`
	RelationshipTypes map[string]int `json:"relationship_types"`
	MostConnected     []Centrality   `json:"most_connected"`
}

// Centrality pairs a node id with its degree-centrality score.
type Centrality struct {
	Node  string  `json:"node"`
	Score float64 `json:"score"`
}

// Compute derives statistics from detached graph snapshots. Histograms
// count the node_type and relationship_type attributes, filing nodes
// and edges without one under "unknown".
func Compute(nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot) *Statistics {
	stats := &Statistics{
		Nodes:             len(nodes),
		Edges:             len(edges),
		NodeTypes:         make(map[string]int),
		RelationshipTypes: make(map[string]int),
	}

	for _, n := range nodes {
		stats.NodeTypes[stringAttr(n.Attrs, "node_type")]++
	}
	for _, e := range edges {
		stats.RelationshipTypes[stringAttr(e.Attrs, "relationship_type")]++
	}

	stats.MostConnected = mostConnected(nodes, edges)
	return stats
}

// mostConnected ranks nodes by (in-degree + out-degree) / (N - 1) over
// the simple-graph projection of the multigraph: parallel edges between
// the same ordered pair count once, opposite directions separately. A
// graph of size one assigns its sole node 1.0.
func mostConnected(nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot) []Centrality {
	if len(nodes) == 0 {
		return nil
	}

	seen := make(map[[2]string]struct{}, len(edges))
	degree := make(map[string]int, len(nodes))
	for _, e := range edges {
		pair := [2]string{e.Source, e.Target}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		degree[e.Source]++
		degree[e.Target]++
	}

	n := len(nodes)
	scored := make([]Centrality, n)
	for i, node := range nodes {
		score := 1.0
		if n > 1 {
			score = float64(degree[node.ID]) / float64(n-1)
		}
		scored[i] = Centrality{Node: node.ID, Score: score}
	}

	// Stable sort so equal scores keep node insertion order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topConnected {
		scored = scored[:topConnected]
	}
	return scored
}

func stringAttr(attrs map[string]any, key string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/vocabulary"
)

func typeSnapshot(id string) graph.NodeSnapshot {
	return graph.NodeSnapshot{ID: id, Attrs: map[string]any{"node_type": "doctype"}}
}

func edgeSnapshot(source, target, kind string) graph.EdgeSnapshot {
	return graph.EdgeSnapshot{
		Source: source,
		Target: target,
		Kind:   kind,
		Attrs:  map[string]any{"relationship_type": kind},
	}
}

func TestCompute_EmptyGraph(t *testing.T) {
	stats := Compute(nil, nil)

	assert.Equal(t, 0, stats.Nodes)
	assert.Equal(t, 0, stats.Edges)
	assert.Empty(t, stats.NodeTypes)
	assert.Empty(t, stats.RelationshipTypes)
	assert.Empty(t, stats.MostConnected)
}

func TestCompute_Histograms(t *testing.T) {
	nodes := []graph.NodeSnapshot{
		typeSnapshot("Customer"),
		typeSnapshot("Sales Order"),
		{ID: "Customer::CUST-0001", Attrs: map[string]any{"node_type": "document"}},
		{ID: "mystery", Attrs: map[string]any{}},
	}
	edges := []graph.EdgeSnapshot{
		edgeSnapshot("Sales Order", "Customer", "links_to"),
		edgeSnapshot("Sales Order", "Customer", "links_to"),
		edgeSnapshot("Customer::CUST-0001", "Customer", "instance_of"),
		{Source: "a", Target: "b", Attrs: map[string]any{}},
	}

	stats := Compute(nodes, edges)

	assert.Equal(t, 4, stats.Nodes)
	assert.Equal(t, 4, stats.Edges)
	assert.Equal(t, map[string]int{"doctype": 2, "document": 1, "unknown": 1}, stats.NodeTypes)
	assert.Equal(t, map[string]int{"links_to": 2, "instance_of": 1, "unknown": 1}, stats.RelationshipTypes)
}

func TestCompute_SingleNodeScoresOne(t *testing.T) {
	stats := Compute([]graph.NodeSnapshot{typeSnapshot("Customer")}, nil)

	require.Len(t, stats.MostConnected, 1)
	assert.Equal(t, "Customer", stats.MostConnected[0].Node)
	assert.Equal(t, 1.0, stats.MostConnected[0].Score)
}

func TestCompute_TwoNodesOneEdge(t *testing.T) {
	nodes := []graph.NodeSnapshot{typeSnapshot("Sales Order"), typeSnapshot("Customer")}
	edges := []graph.EdgeSnapshot{edgeSnapshot("Sales Order", "Customer", "links_to")}

	stats := Compute(nodes, edges)

	require.Len(t, stats.MostConnected, 2)
	assert.Equal(t, 1.0, stats.MostConnected[0].Score)
	assert.Equal(t, 1.0, stats.MostConnected[1].Score)
}

func TestCompute_IsolatedNodeScoresZero(t *testing.T) {
	nodes := []graph.NodeSnapshot{
		typeSnapshot("Sales Order"),
		typeSnapshot("Customer"),
		typeSnapshot("Island"),
	}
	edges := []graph.EdgeSnapshot{edgeSnapshot("Sales Order", "Customer", "links_to")}

	stats := Compute(nodes, edges)

	require.Len(t, stats.MostConnected, 3)
	assert.Equal(t, 0.5, stats.MostConnected[0].Score)
	assert.Equal(t, 0.5, stats.MostConnected[1].Score)
	assert.Equal(t, "Island", stats.MostConnected[2].Node)
	assert.Equal(t, 0.0, stats.MostConnected[2].Score)
}

func TestCompute_ParallelEdgesProjectOnce(t *testing.T) {
	nodes := []graph.NodeSnapshot{typeSnapshot("A"), typeSnapshot("B")}
	edges := []graph.EdgeSnapshot{
		edgeSnapshot("A", "B", "links_to"),
		edgeSnapshot("A", "B", "links_to"),
		edgeSnapshot("A", "B", "has_child_table"),
	}

	stats := Compute(nodes, edges)

	// Three parallel edges collapse to one in the projection.
	assert.Equal(t, 1.0, stats.MostConnected[0].Score)
	assert.Equal(t, 1.0, stats.MostConnected[1].Score)
}

func TestCompute_OppositeDirectionsCountSeparately(t *testing.T) {
	nodes := []graph.NodeSnapshot{typeSnapshot("A"), typeSnapshot("B")}
	edges := []graph.EdgeSnapshot{
		edgeSnapshot("A", "B", "links_to"),
		edgeSnapshot("B", "A", "links_to"),
	}

	stats := Compute(nodes, edges)

	assert.Equal(t, 2.0, stats.MostConnected[0].Score)
	assert.Equal(t, 2.0, stats.MostConnected[1].Score)
}

func TestCompute_TopTenWithInsertionOrderTies(t *testing.T) {
	nodes := []graph.NodeSnapshot{typeSnapshot("Hub")}
	var edges []graph.EdgeSnapshot
	for i := 1; i <= 11; i++ {
		spoke := fmt.Sprintf("Spoke-%02d", i)
		nodes = append(nodes, typeSnapshot(spoke))
		edges = append(edges, edgeSnapshot("Hub", spoke, "links_to"))
	}

	stats := Compute(nodes, edges)

	require.Len(t, stats.MostConnected, 10, "ranking is capped at ten")
	assert.Equal(t, "Hub", stats.MostConnected[0].Node)
	assert.Equal(t, 1.0, stats.MostConnected[0].Score)

	// All spokes tie; earlier insertion ranks higher.
	for i := 1; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("Spoke-%02d", i), stats.MostConnected[i].Node)
	}
}

func TestCompute_FromStore(t *testing.T) {
	store := graph.NewStore()
	store.UpsertType("Customer", graph.TypeNode{Module: "Selling"})
	store.UpsertType("Sales Order", graph.TypeNode{Module: "Selling"})
	store.AddEdge("Sales Order", "Customer", vocabulary.KindLinksTo, nil)
	store.UpsertRecord(graph.RecordNode{ID: graph.RecordID{Type: "Customer", Name: "CUST-0001"}})

	stats := Compute(store.Nodes(), store.Edges())

	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, map[string]int{"doctype": 2, "document": 1}, stats.NodeTypes)
	assert.Equal(t, map[string]int{"links_to": 1, "instance_of": 1}, stats.RelationshipTypes)
}

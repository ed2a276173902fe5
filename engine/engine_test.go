package engine

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/export"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/metric"
	"github.com/c360/docgraph/resolver"
	"github.com/c360/docgraph/testutil"
	"github.com/c360/docgraph/vocabulary"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, source datasource.Source, deps Dependencies) (*Engine, *graph.Store) {
	t.Helper()

	res, err := resolver.New(source, resolver.WithLogger(testLogger()))
	require.NoError(t, err)

	store := graph.NewStore()
	deps.Source = source
	deps.Resolver = res
	deps.Store = store
	if deps.Logger == nil {
		deps.Logger = testLogger()
	}
	eng, err := NewEngine(deps)
	require.NoError(t, err)
	return eng, store
}

// sellingSource scripts a three-type slice of a selling module.
// Customer points at Sales Order both through its schema and through
// the curated association table, Sales Order links back to Customer
// and embeds Sales Order Item.
func sellingSource() *testutil.FakeSource {
	src := testutil.NewFakeSource()
	src.Types = []string{"Customer", "Sales Order", "Sales Order Item"}
	src.Schemas["Customer"] = &datasource.Schema{
		Name:   "Customer",
		Module: "Selling",
		Fields: []datasource.Field{
			testutil.DataField("customer_name"),
			testutil.LinkField("default_order", "Sales Order"),
		},
	}
	src.Schemas["Sales Order"] = &datasource.Schema{
		Name:        "Sales Order",
		Module:      "Selling",
		Submittable: true,
		Fields: []datasource.Field{
			testutil.LinkField("customer", "Customer"),
			testutil.TableField("items", "Sales Order Item"),
		},
	}
	src.Schemas["Sales Order Item"] = &datasource.Schema{
		Name:   "Sales Order Item",
		Module: "Selling",
		Fields: []datasource.Field{testutil.DataField("qty")},
	}
	return src
}

func edgeSet(store *graph.Store) map[[3]string]int {
	set := make(map[[3]string]int)
	for _, edge := range store.Edges() {
		set[[3]string{edge.Source, edge.Target, edge.Kind}]++
	}
	return set
}

func TestNewEngine_RequiredDependencies(t *testing.T) {
	src := testutil.NewFakeSource()
	res, err := resolver.New(src)
	require.NoError(t, err)
	store := graph.NewStore()

	tests := []struct {
		name string
		deps Dependencies
	}{
		{"nil source", Dependencies{Resolver: res, Store: store}},
		{"nil resolver", Dependencies{Source: src, Store: store}},
		{"nil store", Dependencies{Source: src, Resolver: res}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewEngine(tt.deps)
			assert.Nil(t, eng)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestNewEngine_AppliesDefaults(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.NewFakeSource(), Dependencies{})

	assert.Equal(t, DefaultKeyTypes(), eng.config.KeyTypes)
	assert.Equal(t, DefaultSampleLimit, eng.config.SampleLimit)
	assert.Equal(t, defaultSamplePrefetch, eng.config.SamplePrefetch)
	assert.Equal(t, []export.Format{export.FormatJSON, export.FormatGraphML}, eng.config.ExportFormats)
}

func TestBuildTypeGraph(t *testing.T) {
	eng, store := newTestEngine(t, sellingSource(), Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TypesProcessed)
	assert.Equal(t, 4, result.RelationshipsFound)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 3, store.NodeCount())
	assert.Equal(t, 4, store.EdgeCount())

	edges := edgeSet(store)
	// One edge despite Sales Order appearing as both a schema link and
	// a curated association of Customer.
	assert.Equal(t, 1, edges[[3]string{"Customer", "Sales Order", vocabulary.KindLinksTo}])
	assert.Equal(t, 1, edges[[3]string{"Sales Order", "Customer", vocabulary.KindLinksTo}])
	assert.Equal(t, 1, edges[[3]string{"Sales Order", "Sales Order Item", vocabulary.KindLinksTo}])
	assert.Equal(t, 1, edges[[3]string{"Sales Order", "Sales Order Item", vocabulary.KindHasChildTable}])
}

func TestBuildTypeGraph_NodeAnnotations(t *testing.T) {
	eng, store := newTestEngine(t, sellingSource(), Dependencies{})

	_, err := eng.BuildTypeGraph(context.Background())
	require.NoError(t, err)

	var salesOrder map[string]any
	for _, node := range store.Nodes() {
		if node.ID == "Sales Order" {
			salesOrder = node.Attrs
		}
	}
	require.NotNil(t, salesOrder)
	assert.Equal(t, vocabulary.LevelDoctype.String(), salesOrder["node_type"])
	assert.Equal(t, "Selling", salesOrder["module"])
	assert.Equal(t, 2, salesOrder["field_count"])
	assert.Equal(t, true, salesOrder["is_submittable"])
}

func TestBuildTypeGraph_NotConnected(t *testing.T) {
	src := sellingSource()
	src.Connected = false
	eng, store := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotConnected))
	assert.False(t, stderrors.Is(err, errors.ErrNoTypes))
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, 0, store.NodeCount())
	assert.Equal(t, 0, src.ListTypesCalls)
}

func TestBuildTypeGraph_ConnectionError(t *testing.T) {
	src := sellingSource()
	src.CheckConnectionFunc = func(ctx context.Context) (*datasource.ConnectionStatus, error) {
		return nil, stderrors.New("dial tcp: connection refused")
	}
	eng, _ := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotConnected))
	assert.True(t, errors.IsTransient(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestBuildTypeGraph_NoTypes(t *testing.T) {
	eng, store := newTestEngine(t, testutil.NewFakeSource(), Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNoTypes))
	assert.False(t, stderrors.Is(err, errors.ErrNotConnected))
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, 0, store.NodeCount())
}

func TestBuildTypeGraph_ListingError(t *testing.T) {
	src := sellingSource()
	src.ListTypesFunc = func(ctx context.Context) ([]string, error) {
		return nil, stderrors.New("backend exploded")
	}
	eng, _ := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorContains(t, err, "type listing")
	assert.ErrorContains(t, err, "backend exploded")
}

func TestBuildTypeGraph_SchemaFailureLeavesBareNode(t *testing.T) {
	src := sellingSource()
	src.Types = append(src.Types, "Ghost Type")
	eng, store := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildTypeGraph(context.Background())
	require.NoError(t, err)

	// The failed type still counts and still lands in the graph.
	assert.Equal(t, 4, result.TypesProcessed)
	assert.True(t, store.HasNode("Ghost Type"))

	stages := make(map[string]int)
	for _, failure := range result.Failures {
		assert.Equal(t, "Ghost Type", failure.Item)
		stages[failure.Stage]++
	}
	assert.Equal(t, map[string]int{StageSchema: 1, StageResolve: 1}, stages)

	var ghost map[string]any
	for _, node := range store.Nodes() {
		if node.ID == "Ghost Type" {
			ghost = node.Attrs
		}
	}
	require.NotNil(t, ghost)
	assert.Equal(t, "Unknown", ghost["module"])
	assert.Equal(t, 0, ghost["field_count"])
}

func TestBuildRecordGraph(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Customer"] = []datasource.Record{
		{"name": "CUST-0001", "status": "Active", "customer_name": "Acme Industrial"},
		{"name": "CUST-0002", "parent_customer": "CUST-0001", "creation": "2024-01-15 10:30:00"},
	}
	eng, store := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Customer", 10)
	require.NoError(t, err)

	assert.Equal(t, "Customer", result.Type)
	assert.Equal(t, 2, result.RecordsProcessed)
	assert.Equal(t, 1, result.ReferencesFound)
	assert.Empty(t, result.Failures)

	// Type stub plus two records.
	assert.Equal(t, 3, store.NodeCount())
	assert.Equal(t, 3, store.EdgeCount())

	edges := edgeSet(store)
	assert.Equal(t, 1, edges[[3]string{"Customer::CUST-0002", "Customer::CUST-0001", "references_parent_customer"}])
	assert.Equal(t, 1, edges[[3]string{"Customer::CUST-0001", "Customer", vocabulary.KindInstanceOf}])
	assert.Equal(t, 1, edges[[3]string{"Customer::CUST-0002", "Customer", vocabulary.KindInstanceOf}])
}

func TestBuildRecordGraph_TimestampsParsed(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Task"] = []datasource.Record{
		{"name": "TASK-01", "creation": "2024-01-15 10:30:00", "modified": "junk"},
	}
	eng, store := newTestEngine(t, src, Dependencies{})

	_, err := eng.BuildRecordGraph(context.Background(), "Task", 10)
	require.NoError(t, err)

	var attrs map[string]any
	for _, node := range store.Nodes() {
		if node.ID == "Task::TASK-01" {
			attrs = node.Attrs
		}
	}
	require.NotNil(t, attrs)
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, attrs["creation"])
	assert.Equal(t, "junk", attrs["modified"])
	assert.Equal(t, "Unknown", attrs["status"])
}

func TestBuildRecordGraph_OnlyStringValuesMatch(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Sales Order"] = []datasource.Record{
		{"name": "1001"},
		{"name": "ORD-A", "sequence": float64(1001)},
		{"name": "ORD-B", "reference": "1001"},
	}
	eng, store := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Sales Order", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReferencesFound)
	edges := edgeSet(store)
	assert.Equal(t, 1, edges[[3]string{"Sales Order::ORD-B", "Sales Order::1001", "references_reference"}])
	assert.Equal(t, 0, edges[[3]string{"Sales Order::ORD-A", "Sales Order::1001", "references_sequence"}])
}

func TestBuildRecordGraph_EmptySample(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.NewFakeSource(), Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Customer", 10)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNoRecords))
	assert.True(t, errors.IsInvalid(err))
}

func TestBuildRecordGraph_FetchError(t *testing.T) {
	src := testutil.NewFakeSource()
	src.SampleRecordsFunc = func(ctx context.Context, typeName string, limit int) ([]datasource.Record, error) {
		return nil, stderrors.New("bad gateway")
	}
	eng, _ := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Customer", 10)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorContains(t, err, "record sampling")
	assert.ErrorContains(t, err, "bad gateway")
}

func TestBuildRecordGraph_NamelessRecordSkipped(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Customer"] = []datasource.Record{
		{"status": "Active"},
		{"name": "CUST-0001"},
	}
	eng, store := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Customer", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsProcessed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, StageRecord, result.Failures[0].Stage)
	assert.True(t, stderrors.Is(result.Failures[0].Err, errors.ErrMissingField))
	assert.Equal(t, 2, store.NodeCount())
}

func TestBuildRecordGraph_RepeatedBatchesAccumulateEdges(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Project"] = []datasource.Record{
		{"name": "PROJ-1"},
		{"name": "PROJ-2", "parent_project": "PROJ-1"},
	}
	eng, store := newTestEngine(t, src, Dependencies{})

	for i := 0; i < 2; i++ {
		result, err := eng.BuildRecordGraph(context.Background(), "Project", 10)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ReferencesFound)
	}

	// Nodes merge on repeat, reference edges accumulate, and the
	// instance_of edge is laid down exactly once.
	assert.Equal(t, 3, store.NodeCount())
	edges := edgeSet(store)
	assert.Equal(t, 2, edges[[3]string{"Project::PROJ-2", "Project::PROJ-1", "references_parent_project"}])
	assert.Equal(t, 1, edges[[3]string{"Project::PROJ-1", "Project", vocabulary.KindInstanceOf}])
}

func TestBuildRecordGraph_LimitApplied(t *testing.T) {
	src := testutil.NewFakeSource()
	src.Records["Item"] = []datasource.Record{
		{"name": "ITEM-1"},
		{"name": "ITEM-2"},
		{"name": "ITEM-3"},
	}
	eng, _ := newTestEngine(t, src, Dependencies{})

	result, err := eng.BuildRecordGraph(context.Background(), "Item", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsProcessed)
}

func TestBuildAll(t *testing.T) {
	src := sellingSource()
	src.Records["Customer"] = []datasource.Record{
		{"name": "CUST-0001", "status": "Active"},
		{"name": "CUST-0002", "parent_customer": "CUST-0001"},
	}

	eng, store := newTestEngine(t, src, Dependencies{
		Exporter: &export.Exporter{Dir: t.TempDir()},
		Metrics:  metric.NewMetrics(),
		Config: Config{
			KeyTypes:      []string{"Customer", "Sales Order"},
			SampleLimit:   5,
			ExportFormats: []export.Format{export.FormatJSON},
		},
	})

	report, err := eng.BuildAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	_, parseErr := uuid.Parse(report.BuildID)
	assert.NoError(t, parseErr)
	assert.GreaterOrEqual(t, report.FinishedAt, report.StartedAt)

	require.NotNil(t, report.TypeBuild)
	assert.Equal(t, 3, report.TypeBuild.TypesProcessed)
	assert.Equal(t, 4, report.TypeBuild.RelationshipsFound)

	require.Contains(t, report.RecordBuilds, "Customer")
	assert.Equal(t, 2, report.RecordBuilds["Customer"].RecordsProcessed)
	assert.NotContains(t, report.RecordBuilds, "Sales Order")

	// The empty Sales Order sample is reported, not fatal.
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Sales Order")

	require.NotNil(t, report.Stats)
	assert.Equal(t, 5, report.Stats.Nodes)
	assert.Equal(t, 7, report.Stats.Edges)
	assert.Equal(t, store.NodeCount(), report.Stats.Nodes)
	assert.Equal(t, store.EdgeCount(), report.Stats.Edges)

	require.Len(t, report.ExportPaths, 1)
	assert.Equal(t, ".json", filepath.Ext(report.ExportPaths[0]))
	_, statErr := os.Stat(report.ExportPaths[0])
	assert.NoError(t, statErr)

	// Samples are fetched once per key type and reused.
	assert.Equal(t, 1, src.RecordCalls("Customer"))
	assert.Equal(t, 1, src.RecordCalls("Sales Order"))
}

func TestBuildAll_NotConnected(t *testing.T) {
	src := sellingSource()
	src.Connected = false
	src.Records["Customer"] = []datasource.Record{{"name": "CUST-0001"}}
	eng, store := newTestEngine(t, src, Dependencies{})

	report, err := eng.BuildAll(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotConnected))
	require.NotNil(t, report)

	assert.Nil(t, report.TypeBuild)
	assert.Empty(t, report.RecordBuilds)
	require.Len(t, report.Errors, 1)
	require.NotNil(t, report.Stats)
	assert.Equal(t, 0, report.Stats.Nodes)
	assert.Empty(t, report.ExportPaths)
	assert.Equal(t, 0, src.RecordCalls("Customer"))
	assert.Equal(t, 0, store.NodeCount())
}

func TestBuildAll_ExportFailureReported(t *testing.T) {
	src := sellingSource()
	src.Records["Customer"] = []datasource.Record{{"name": "CUST-0001"}}

	blocker := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	eng, _ := newTestEngine(t, src, Dependencies{
		Exporter: &export.Exporter{Dir: filepath.Join(blocker, "out")},
		Config: Config{
			KeyTypes:      []string{"Customer"},
			ExportFormats: []export.Format{export.FormatJSON},
		},
	})

	report, err := eng.BuildAll(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.ExportPaths)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "output directory creation")
}

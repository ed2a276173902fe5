package engine

import (
	"context"
	"fmt"

	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/vocabulary"
)

// TypeBuildResult summarizes the type-level build.
type TypeBuildResult struct {
	TypesProcessed     int           `json:"types_processed"`
	RelationshipsFound int           `json:"relationships_found"`
	Failures           []ItemFailure `json:"failures,omitempty"`
}

// BuildTypeGraph builds the schema layer: one node per listed type,
// annotated from its schema, then links_to and has_child_table edges
// between types that both exist. Connectivity failure is the single
// hard fail; schema and resolution problems are recorded per type and
// the build continues, leaving a bare node for types whose schema
// never arrived.
func (e *Engine) BuildTypeGraph(ctx context.Context) (*TypeBuildResult, error) {
	status, err := e.source.CheckConnection(ctx)
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrNotConnected, err),
			"engine", "BuildTypeGraph", "connectivity check")
	}
	if status == nil || !status.Connected {
		detail := "no reachable instance"
		if status != nil && status.Detail != "" {
			detail = status.Detail
		}
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %s", errors.ErrNotConnected, detail),
			"engine", "BuildTypeGraph", "connectivity check")
	}
	e.logger.Info("data source connected",
		"method", status.Method,
		"detail", status.Detail,
		"instances_found", status.InstancesFound)

	typeNames, err := e.source.ListTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "engine", "BuildTypeGraph", "type listing")
	}
	if len(typeNames) == 0 {
		return nil, errors.WrapInvalid(errors.ErrNoTypes, "engine", "BuildTypeGraph", "type listing")
	}
	e.logger.Info("types listed", "count", len(typeNames))

	result := &TypeBuildResult{}

	// Pass 1: nodes. Schemas are warmed concurrently, then upserts are
	// applied in listing order so insertion sequence stays
	// deterministic.
	if err := e.resolver.Prefetch(ctx, typeNames); err != nil {
		e.logger.Warn("schema prefetch incomplete", "error", err)
	}
	for _, typeName := range typeNames {
		var node graph.TypeNode
		schema, err := e.resolver.Schema(ctx, typeName)
		switch {
		case err != nil:
			result.Failures = append(result.Failures, ItemFailure{Item: typeName, Stage: StageSchema, Err: err})
			e.observeItemFailure(StageSchema)
		case schema != nil:
			node = graph.TypeNode{
				Module:      schema.Module,
				Custom:      schema.Custom,
				Virtual:     schema.Virtual,
				FieldCount:  schema.FieldCount(),
				Submittable: schema.Submittable,
				HasWebView:  schema.HasWebView,
			}
		}
		e.store.UpsertType(typeName, node)
		result.TypesProcessed++
		if e.metrics != nil {
			e.metrics.RecordTypeAdded()
		}
	}

	// Pass 2: edges. Targets outside the graph are dropped; repeats of
	// (target, kind) within one source type collapse to a single edge.
	for _, typeName := range typeNames {
		res := e.resolver.Resolve(ctx, typeName)
		if res.Err != nil {
			result.Failures = append(result.Failures, ItemFailure{Item: typeName, Stage: StageResolve, Err: res.Err})
			e.observeItemFailure(StageResolve)
		}

		seen := make(map[[2]string]struct{})
		addEdges := func(targets []string, kind string) {
			for _, target := range targets {
				if !e.store.HasNode(target) {
					continue
				}
				key := [2]string{target, kind}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				e.store.AddEdge(typeName, target, kind, nil)
				result.RelationshipsFound++
				if e.metrics != nil {
					e.metrics.RecordEdgeAdded(kind)
				}
			}
		}
		addEdges(res.LinksTo, vocabulary.KindLinksTo)
		addEdges(res.ChildTables, vocabulary.KindHasChildTable)
	}

	e.logger.Info("type graph built",
		"types", result.TypesProcessed,
		"relationships", result.RelationshipsFound,
		"failures", len(result.Failures))
	return result, nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/pkg/timestamp"
	"github.com/c360/docgraph/vocabulary"
)

// RecordBuildResult summarizes one type's instance-level build.
type RecordBuildResult struct {
	Type             string        `json:"type"`
	RecordsProcessed int           `json:"records_processed"`
	ReferencesFound  int           `json:"references_found"`
	Failures         []ItemFailure `json:"failures,omitempty"`
}

// BuildRecordGraph samples records for one type, adds an instance
// node per named record, and links records that mention each other's
// names. A failed or empty sample fails the batch; records without a
// name are recorded as failures and skipped.
func (e *Engine) BuildRecordGraph(ctx context.Context, typeName string, limit int) (*RecordBuildResult, error) {
	records, err := e.source.SampleRecords(ctx, typeName, limit)
	return e.buildRecords(typeName, records, err)
}

// buildRecords is the sample-independent core shared with BuildAll's
// prefetched path.
func (e *Engine) buildRecords(typeName string, records []datasource.Record, fetchErr error) (*RecordBuildResult, error) {
	if fetchErr != nil {
		return nil, errors.Wrap(fetchErr, "engine", "BuildRecordGraph", "record sampling")
	}
	if len(records) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrNoRecords, typeName),
			"engine", "BuildRecordGraph", "record sampling")
	}

	result := &RecordBuildResult{Type: typeName}

	type placed struct {
		id     graph.RecordID
		record datasource.Record
	}
	batch := make([]placed, 0, len(records))

	for _, record := range records {
		name := record.Name()
		if name == "" {
			result.Failures = append(result.Failures, ItemFailure{
				Item:  typeName,
				Stage: StageRecord,
				Err:   fmt.Errorf("%w: name", errors.ErrMissingField),
			})
			e.observeItemFailure(StageRecord)
			continue
		}
		id := e.store.UpsertRecord(newRecordNode(typeName, name, record))
		batch = append(batch, placed{id: id, record: record})
		result.RecordsProcessed++
		if e.metrics != nil {
			e.metrics.RecordRecordAdded(typeName)
		}
	}

	// Value matching: a string field equal to another placed record's
	// name becomes a references_<field> edge. Quadratic over one
	// batch, which sample limits keep small. Coincidental equality
	// produces false positives and differing naming conventions hide
	// real references; both are accepted here.
	for _, from := range batch {
		for _, field := range from.record.Keys() {
			value, ok := from.record[field].(string)
			if !ok || value == "" {
				continue
			}
			for _, to := range batch {
				if to.id == from.id || to.record.Name() != value {
					continue
				}
				kind := vocabulary.ReferenceKind(field)
				e.store.AddEdge(from.id.String(), to.id.String(), kind, nil)
				result.ReferencesFound++
				if e.metrics != nil {
					e.metrics.RecordEdgeAdded(kind)
				}
			}
		}
	}

	e.logger.Info("record graph built",
		"type", typeName,
		"records", result.RecordsProcessed,
		"references", result.ReferencesFound,
		"failures", len(result.Failures))
	return result, nil
}

// newRecordNode maps one sampled record onto a graph node. Timestamps
// parse into Unix milliseconds; values that do not parse travel
// through Extra verbatim.
func newRecordNode(typeName, name string, record datasource.Record) graph.RecordNode {
	node := graph.RecordNode{
		ID:        graph.RecordID{Type: typeName, Name: name},
		Status:    record.String("status"),
		DocStatus: record.Int("docstatus"),
		Customer:  record.String("customer"),
		Supplier:  record.String("supplier"),
		Company:   record.String("company"),
		ItemCode:  record.String("item_code"),
		Project:   record.String("project"),
	}

	extra := make(map[string]string)
	if raw, ok := record["creation"]; ok {
		if ms := timestamp.Parse(raw); ms != 0 {
			node.Created = ms
		} else if s := record.String("creation"); s != "" {
			extra["creation"] = s
		}
	}
	if raw, ok := record["modified"]; ok {
		if ms := timestamp.Parse(raw); ms != 0 {
			node.Modified = ms
		} else if s := record.String("modified"); s != "" {
			extra["modified"] = s
		}
	}
	if len(extra) > 0 {
		node.Extra = extra
	}
	return node
}

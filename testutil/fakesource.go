package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
)

// FakeSource is a scripted datasource.Source for tests. The scripted
// fields drive responses; the *Func overrides take precedence when set,
// which is how tests inject errors or custom behavior per operation.
// All methods are safe for concurrent use.
type FakeSource struct {
	mu sync.Mutex

	// Scripted data
	Connected bool
	Types     []string
	Schemas   map[string]*datasource.Schema
	Records   map[string][]datasource.Record

	// Behavior overrides
	CheckConnectionFunc func(ctx context.Context) (*datasource.ConnectionStatus, error)
	ListTypesFunc       func(ctx context.Context) ([]string, error)
	GetSchemaFunc       func(ctx context.Context, typeName string) (*datasource.Schema, error)
	SampleRecordsFunc   func(ctx context.Context, typeName string, limit int) ([]datasource.Record, error)

	// Call counts for verification
	CheckConnectionCalls int
	ListTypesCalls       int
	GetSchemaCalls       map[string]int
	SampleRecordsCalls   map[string]int
}

var _ datasource.Source = (*FakeSource)(nil)

// NewFakeSource returns a connected source with no types, schemas or
// records scripted.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Connected:          true,
		Schemas:            make(map[string]*datasource.Schema),
		Records:            make(map[string][]datasource.Record),
		GetSchemaCalls:     make(map[string]int),
		SampleRecordsCalls: make(map[string]int),
	}
}

// CheckConnection reports the scripted connection state.
func (f *FakeSource) CheckConnection(ctx context.Context) (*datasource.ConnectionStatus, error) {
	f.mu.Lock()
	f.CheckConnectionCalls++
	fn := f.CheckConnectionFunc
	connected := f.Connected
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if !connected {
		return &datasource.ConnectionStatus{Detail: "scripted offline"}, nil
	}
	return &datasource.ConnectionStatus{
		Connected:      true,
		Method:         "api",
		Detail:         "fake://source",
		InstancesFound: 1,
	}, nil
}

// ListTypes returns the scripted type names.
func (f *FakeSource) ListTypes(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	f.ListTypesCalls++
	fn := f.ListTypesFunc
	types := append([]string(nil), f.Types...)
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return types, nil
}

// GetSchema returns the scripted schema. Types without one fail with
// ErrEmptySchema, mirroring a backend that answers with an empty
// document.
func (f *FakeSource) GetSchema(ctx context.Context, typeName string) (*datasource.Schema, error) {
	f.mu.Lock()
	f.GetSchemaCalls[typeName]++
	fn := f.GetSchemaFunc
	schema := f.Schemas[typeName]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, typeName)
	}
	if schema == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrEmptySchema, typeName),
			"testutil", "GetSchema", "schema lookup")
	}
	return schema, nil
}

// SampleRecords returns up to limit scripted records for the type.
func (f *FakeSource) SampleRecords(ctx context.Context, typeName string, limit int) ([]datasource.Record, error) {
	f.mu.Lock()
	f.SampleRecordsCalls[typeName]++
	fn := f.SampleRecordsFunc
	records := append([]datasource.Record(nil), f.Records[typeName]...)
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, typeName, limit)
	}
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SchemaCalls returns how many times GetSchema ran for typeName.
func (f *FakeSource) SchemaCalls(typeName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.GetSchemaCalls[typeName]
}

// RecordCalls returns how many times SampleRecords ran for typeName.
func (f *FakeSource) RecordCalls(typeName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SampleRecordsCalls[typeName]
}

// LinkField builds a Link field pointing at target.
func LinkField(name, target string) datasource.Field {
	return datasource.Field{Name: name, Kind: datasource.FieldKindLink, Target: target}
}

// TableField builds a Table field embedding target.
func TableField(name, target string) datasource.Field {
	return datasource.Field{Name: name, Kind: datasource.FieldKindTable, Target: target}
}

// DataField builds a plain data field with no relationship meaning.
func DataField(name string) datasource.Field {
	return datasource.Field{Name: name, Kind: "Data"}
}

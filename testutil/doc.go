// Package testutil provides in-process test doubles for the build
// pipeline.
//
// FakeSource stands in for a backend data source so resolver and
// engine tests run without network access. Script it with types,
// schemas and records:
//
//	source := testutil.NewFakeSource()
//	source.Types = []string{"Customer", "Sales Order"}
//	source.Schemas["Sales Order"] = &datasource.Schema{
//		Name:   "Sales Order",
//		Module: "Selling",
//		Fields: []datasource.Field{
//			testutil.LinkField("customer", "Customer"),
//			testutil.TableField("items", "Sales Order Item"),
//		},
//	}
//
// Error paths are exercised through the *Func overrides:
//
//	source.ListTypesFunc = func(ctx context.Context) ([]string, error) {
//		return nil, errors.ErrRequestFailed
//	}
//
// Call counters record per-type fetch counts, which is how caching
// behavior is asserted.
package testutil

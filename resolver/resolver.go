// Package resolver extracts relationship targets from backend schemas.
//
// A Resolver wraps a datasource.Source with an LRU schema cache and
// turns each type's field list into the set of types it links to and
// the child tables it owns. Curated associations from the vocabulary
// package are always merged in, so resolution still yields the core
// business relationships when the backend cannot serve a schema.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/metric"
	"github.com/c360/docgraph/pkg/cache"
	"github.com/c360/docgraph/pkg/worker"
	"github.com/c360/docgraph/vocabulary"
)

const (
	defaultCacheSize       = 1024
	defaultPrefetchWorkers = 8

	// drainTimeout bounds how long Prefetch waits for in-flight schema
	// fetches when shutting its pool down.
	drainTimeout = 30 * time.Second
)

// Resolution describes the outgoing relationships extracted from a
// single type's schema.
type Resolution struct {
	// LinksTo holds the target types of link fields, in field order,
	// followed by the curated associations for the type. Repeats are
	// preserved; callers that need uniqueness dedupe on their side.
	LinksTo []string

	// ChildTables holds the child types owned through table fields,
	// in field order.
	ChildTables []string

	// Err carries the schema fetch failure when only curated
	// associations could be resolved.
	Err error
}

// Resolver resolves type names to their outgoing relationships using
// schemas fetched through a data source and memoized in an LRU cache.
type Resolver struct {
	source   datasource.Source
	schemas  cache.Cache[*datasource.Schema]
	logger   *slog.Logger
	registry *metric.MetricsRegistry

	cacheSize       int
	prefetchWorkers int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheSize sets the schema cache capacity.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

// WithPrefetchWorkers sets how many schemas Prefetch fetches
// concurrently.
func WithPrefetchWorkers(workers int) Option {
	return func(r *Resolver) {
		if workers > 0 {
			r.prefetchWorkers = workers
		}
	}
}

// WithLogger sets the logger for resolution events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetricsRegistry exposes schema cache and prefetch pool metrics
// through the shared registry.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// New creates a Resolver backed by source.
func New(source datasource.Source, opts ...Option) (*Resolver, error) {
	if source == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "resolver", "New",
			"data source is required")
	}

	r := &Resolver{
		source:          source,
		logger:          slog.Default(),
		cacheSize:       defaultCacheSize,
		prefetchWorkers: defaultPrefetchWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "resolver")

	var cacheOpts []cache.Option[*datasource.Schema]
	if r.registry != nil {
		cacheOpts = append(cacheOpts, cache.WithMetrics[*datasource.Schema](r.registry, "resolver_schema"))
	}
	schemas, err := cache.NewLRU[*datasource.Schema](r.cacheSize, cacheOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "resolver", "New", "schema cache creation")
	}
	r.schemas = schemas

	return r, nil
}

// Schema returns the schema for typeName, fetching through the data
// source on a cache miss. Only successful fetches are cached, so a
// type that failed once is retried on the next call.
func (r *Resolver) Schema(ctx context.Context, typeName string) (*datasource.Schema, error) {
	if schema, ok := r.schemas.Get(typeName); ok {
		return schema, nil
	}

	schema, err := r.source.GetSchema(ctx, typeName)
	if err != nil {
		return nil, err
	}

	if _, err := r.schemas.Set(typeName, schema); err != nil {
		r.logger.Warn("schema cache store failed", "type", typeName, "error", err)
	}
	return schema, nil
}

// Resolve extracts the relationship targets for typeName. A schema
// fetch failure does not abort resolution: the error is recorded on
// the Resolution and the curated associations are still returned.
func (r *Resolver) Resolve(ctx context.Context, typeName string) Resolution {
	var res Resolution

	schema, err := r.Schema(ctx, typeName)
	if err != nil {
		res.Err = err
		r.logger.Debug("schema resolution degraded to curated associations",
			"type", typeName, "error", err)
	}
	if schema != nil {
		for _, field := range schema.Fields {
			if field.Target == "" {
				continue
			}
			switch field.Kind {
			case datasource.FieldKindLink:
				res.LinksTo = append(res.LinksTo, field.Target)
			case datasource.FieldKindTable:
				res.ChildTables = append(res.ChildTables, field.Target)
			}
		}
	}

	res.LinksTo = append(res.LinksTo, vocabulary.AssociationsFor(typeName)...)
	return res
}

// Prefetch warms the schema cache for the given type names using a
// bounded worker pool. Per-type fetch failures are logged and skipped;
// a later Resolve surfaces them on the affected type. The returned
// error covers pool lifecycle problems only.
func (r *Resolver) Prefetch(ctx context.Context, typeNames []string) error {
	if len(typeNames) == 0 {
		return nil
	}

	workers := r.prefetchWorkers
	if len(typeNames) < workers {
		workers = len(typeNames)
	}

	var poolOpts []worker.Option[string]
	if r.registry != nil {
		poolOpts = append(poolOpts, worker.WithMetricsRegistry[string](r.registry, "resolver_prefetch"))
	}

	pool := worker.NewPool(workers, len(typeNames), func(ctx context.Context, typeName string) error {
		if _, err := r.Schema(ctx, typeName); err != nil {
			r.logger.Debug("schema prefetch skipped", "type", typeName, "error", err)
			return err
		}
		return nil
	}, poolOpts...)

	if err := pool.Start(ctx); err != nil {
		return errors.Wrap(err, "resolver", "Prefetch", "worker pool start")
	}
	for _, typeName := range typeNames {
		if err := pool.SubmitWait(ctx, typeName); err != nil {
			_ = pool.Stop(drainTimeout)
			return errors.Wrap(err, "resolver", "Prefetch", "work submission")
		}
	}
	if err := pool.Stop(drainTimeout); err != nil {
		return errors.Wrap(err, "resolver", "Prefetch", "worker pool drain")
	}
	return nil
}

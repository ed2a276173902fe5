package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360/docgraph/analytics"
	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/export"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/metric"
	"github.com/c360/docgraph/pkg/timestamp"
	"github.com/c360/docgraph/resolver"
)

// Stages recorded on item failures.
const (
	StageSchema  = "schema"
	StageResolve = "resolve"
	StageRecord  = "record"
)

// DefaultSampleLimit bounds record samples per key type.
const DefaultSampleLimit = 10

// defaultSamplePrefetch bounds concurrent sample fetches in BuildAll.
const defaultSamplePrefetch = 4

// DefaultKeyTypes returns the entity types given instance-level
// discovery when none are configured.
func DefaultKeyTypes() []string {
	return []string{"Customer", "Item", "Sales Order", "Purchase Order", "Project"}
}

// Config tunes a full build.
type Config struct {
	// KeyTypes are the entity types sampled for instance-level
	// discovery, in order.
	KeyTypes []string

	// SampleLimit bounds how many records are sampled per key type.
	SampleLimit int

	// SamplePrefetch bounds concurrent sample fetches.
	SamplePrefetch int

	// ExportFormats are written by BuildAll when an Exporter is wired.
	ExportFormats []export.Format
}

func (c *Config) applyDefaults() {
	if len(c.KeyTypes) == 0 {
		c.KeyTypes = DefaultKeyTypes()
	}
	if c.SampleLimit <= 0 {
		c.SampleLimit = DefaultSampleLimit
	}
	if c.SamplePrefetch <= 0 {
		c.SamplePrefetch = defaultSamplePrefetch
	}
	if len(c.ExportFormats) == 0 {
		c.ExportFormats = []export.Format{export.FormatJSON, export.FormatGraphML}
	}
}

// Dependencies carries everything an Engine needs. Source, Resolver
// and Store are required; the rest have working defaults.
type Dependencies struct {
	Source   datasource.Source
	Resolver *resolver.Resolver
	Store    *graph.Store
	Exporter *export.Exporter // nil disables exports in BuildAll
	Logger   *slog.Logger     // nil means slog.Default()
	Metrics  *metric.Metrics  // nil disables metrics
	Config   Config
}

// Engine drives graph construction against an injected data source.
type Engine struct {
	source   datasource.Source
	resolver *resolver.Resolver
	store    *graph.Store
	exporter *export.Exporter
	logger   *slog.Logger
	metrics  *metric.Metrics
	config   Config
}

// NewEngine validates deps and builds an Engine.
func NewEngine(deps Dependencies) (*Engine, error) {
	if deps.Source == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "engine", "NewEngine", "data source is required")
	}
	if deps.Resolver == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "engine", "NewEngine", "resolver is required")
	}
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "engine", "NewEngine", "graph store is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := deps.Config
	cfg.applyDefaults()

	return &Engine{
		source:   deps.Source,
		resolver: deps.Resolver,
		store:    deps.Store,
		exporter: deps.Exporter,
		logger:   logger.With("component", "engine"),
		metrics:  deps.Metrics,
		config:   cfg,
	}, nil
}

// ItemFailure records one item skipped during a build batch.
type ItemFailure struct {
	Item  string `json:"item"`
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

// String renders the failure for flattened report output.
func (f ItemFailure) String() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Item, f.Err)
}

// Report is the outcome of one full build. Errors flattens every
// batch failure and phase error into one list; a populated report
// comes back even when BuildAll returns an error.
type Report struct {
	BuildID      string                        `json:"build_id"`
	StartedAt    int64                         `json:"started_at"`
	FinishedAt   int64                         `json:"finished_at"`
	TypeBuild    *TypeBuildResult              `json:"type_build,omitempty"`
	RecordBuilds map[string]*RecordBuildResult `json:"record_builds,omitempty"`
	Stats        *analytics.Statistics         `json:"stats,omitempty"`
	ExportPaths  []string                      `json:"export_paths,omitempty"`
	Errors       []string                      `json:"errors,omitempty"`
}

// BuildAll runs the full pipeline: type-level build, instance-level
// builds for each configured key type, statistics over the finished
// graph, then exports. The returned error is non-nil only when the
// source is unreachable; every other problem lands in the report and
// the build keeps going.
func (e *Engine) BuildAll(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:      uuid.NewString(),
		StartedAt:    timestamp.Now(),
		RecordBuilds: make(map[string]*RecordBuildResult),
	}
	e.logger.Info("build started", "build_id", report.BuildID, "key_types", e.config.KeyTypes)

	var buildErr error

	phaseStart := time.Now()
	typeResult, err := e.BuildTypeGraph(ctx)
	e.observePhase("type_build", phaseStart)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		if stderrors.Is(err, errors.ErrNotConnected) {
			buildErr = err
		}
	}
	if typeResult != nil {
		report.TypeBuild = typeResult
		for _, failure := range typeResult.Failures {
			report.Errors = append(report.Errors, failure.String())
		}
	}

	if buildErr == nil {
		phaseStart = time.Now()
		samples := e.prefetchSamples(ctx)
		for _, keyType := range e.config.KeyTypes {
			fetched := samples[keyType]
			result, err := e.buildRecords(keyType, fetched.records, fetched.err)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			report.RecordBuilds[keyType] = result
			for _, failure := range result.Failures {
				report.Errors = append(report.Errors, failure.String())
			}
		}
		e.observePhase("record_build", phaseStart)
	} else {
		e.logger.Warn("instance phase skipped", "reason", buildErr)
	}

	phaseStart = time.Now()
	nodes := e.store.Nodes()
	edges := e.store.Edges()
	report.Stats = analytics.Compute(nodes, edges)
	e.observePhase("analytics", phaseStart)

	if e.exporter != nil {
		phaseStart = time.Now()
		for _, format := range e.config.ExportFormats {
			path, err := e.exporter.Export(nodes, edges, format)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				if e.metrics != nil {
					e.metrics.RecordExport(string(format), "error")
				}
				continue
			}
			report.ExportPaths = append(report.ExportPaths, path)
			if e.metrics != nil {
				e.metrics.RecordExport(string(format), "success")
			}
			e.logger.Info("graph exported", "format", format, "path", path)
		}
		e.observePhase("export", phaseStart)
	}

	report.FinishedAt = timestamp.Now()
	if e.metrics != nil {
		status := "success"
		if buildErr != nil {
			status = "failure"
		}
		e.metrics.RecordBuild(status)
	}
	e.logger.Info("build finished",
		"build_id", report.BuildID,
		"nodes", report.Stats.Nodes,
		"edges", report.Stats.Edges,
		"errors", len(report.Errors),
		"duration", timestamp.Between(report.StartedAt, report.FinishedAt))
	return report, buildErr
}

type sample struct {
	records []datasource.Record
	err     error
}

// prefetchSamples fetches record samples for every key type through a
// bounded errgroup. Fetch errors are carried per type rather than
// cancelling the group, so the caller can apply results in configured
// order and report each failure against its type.
func (e *Engine) prefetchSamples(ctx context.Context) map[string]*sample {
	samples := make(map[string]*sample, len(e.config.KeyTypes))
	var mu sync.Mutex

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.config.SamplePrefetch)
	for _, keyType := range e.config.KeyTypes {
		eg.Go(func() error {
			records, err := e.source.SampleRecords(gctx, keyType, e.config.SampleLimit)
			mu.Lock()
			samples[keyType] = &sample{records: records, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return samples
}

func (e *Engine) observePhase(phase string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordPhaseDuration(phase, time.Since(start))
}

func (e *Engine) observeItemFailure(stage string) {
	if e.metrics != nil {
		e.metrics.RecordItemFailure(stage)
	}
}

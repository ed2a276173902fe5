// Package main implements the docgraph command-line tool.
//
// docgraph connects to an ERP backend, builds a knowledge graph of
// document types, their relationships and sampled business records,
// and exports the result in analysis-friendly formats.
//
// The tool layers its configuration from defaults, configuration
// files, DOCGRAPH_* environment variables and command-line flags, in
// that order of precedence.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/c360/docgraph/config"
	"github.com/c360/docgraph/datasource/frappe"
	"github.com/c360/docgraph/engine"
	"github.com/c360/docgraph/export"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/metric"
	"github.com/c360/docgraph/pkg/timestamp"
	"github.com/c360/docgraph/resolver"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "docgraph"
)

func main() {
	// Panic recovery with stack trace logging
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// A .env file feeds the flag env fallbacks, so it loads first.
	envLoaded := godotenv.Load() == nil

	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}
	if envLoaded {
		logger.Debug("environment loaded from .env file")
	}

	cfg, err := loadConfiguration(cliCfg)
	if err != nil {
		return err
	}

	// Rebuild the logger now that the file and environment layers have
	// had their say on level and format.
	logger = setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	return executeBuild(context.Background(), cfg, cliCfg, logger)
}

// initializeCLI parses flags, handles early-exit commands and sets up
// the initial logger.
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()

	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid command-line flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s (built %s)\n", appName, Version, BuildTime)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting docgraph",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// loadConfiguration assembles the layered configuration and applies
// explicit flag overrides on top.
func loadConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyFlagOverrides(cfg, cliCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Debug("configuration assembled", "config", cfg.String())
	return cfg, nil
}

// applyFlagOverrides lays explicitly provided CLI values over the
// loaded configuration.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.BaseURL != "" {
		cfg.Source.BaseURL = cliCfg.BaseURL
	}
	if cliCfg.APIKey != "" {
		cfg.Source.APIKey = cliCfg.APIKey
	}
	if cliCfg.APISecret != "" {
		cfg.Source.APISecret = cliCfg.APISecret
	}
	if cliCfg.KeyTypes != "" {
		cfg.Build.KeyTypes = splitCSV(cliCfg.KeyTypes)
	}
	if cliCfg.SampleLimit > 0 {
		cfg.Build.SampleLimit = cliCfg.SampleLimit
	}
	if cliCfg.OutputDir != "" {
		cfg.Export.Dir = cliCfg.OutputDir
	}
	if cliCfg.Formats != "" {
		cfg.Export.Formats = splitCSV(cliCfg.Formats)
	}
	if cliCfg.ValidateExports {
		cfg.Export.Validate = true
	}
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}
}

// executeBuild runs the full graph build under signal cancellation.
func executeBuild(ctx context.Context, cfg *config.Config, cliCfg *CLIConfig, logger *slog.Logger) error {
	buildCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cliCfg.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		buildCtx, timeoutCancel = context.WithTimeout(buildCtx, cliCfg.Timeout)
		defer timeoutCancel()
	}

	registry := metric.NewMetricsRegistry()
	metricsServer := startMetricsServer(cfg, registry, logger)
	if metricsServer != nil {
		defer func() {
			if err := metricsServer.Stop(); err != nil {
				logger.Warn("metrics server stop failed", "error", err)
			}
		}()
	}

	eng, err := buildEngine(cfg, logger, registry)
	if err != nil {
		return err
	}

	report, buildErr := eng.BuildAll(buildCtx)
	if report == nil {
		return buildErr
	}

	logReport(logger, report)

	if cliCfg.ReportPath != "" {
		if err := writeReport(cliCfg.ReportPath, report); err != nil {
			logger.Error("report write failed", "path", cliCfg.ReportPath, "error", err)
		} else {
			logger.Info("build report written", "path", cliCfg.ReportPath)
		}
	}

	if buildErr == nil && cfg.Export.Validate {
		if err := validateExports(logger, report.ExportPaths); err != nil {
			return err
		}
	}

	return buildErr
}

// buildEngine wires the data source, resolver, store and exporter into
// a ready engine.
func buildEngine(cfg *config.Config, logger *slog.Logger, registry *metric.MetricsRegistry) (*engine.Engine, error) {
	coreMetrics := registry.CoreMetrics()

	source, err := frappe.NewClient(frappe.Config{
		BaseURL:        cfg.Source.BaseURL,
		APIKey:         cfg.Source.APIKey,
		APISecret:      cfg.Source.APISecret,
		Timeout:        cfg.Source.Timeout,
		RetryCount:     cfg.Source.RetryCount,
		ListLimit:      cfg.Source.ListLimit,
		DiscoveryPorts: cfg.Source.DiscoveryPorts,
	}, frappe.WithLogger(logger), frappe.WithMetrics(coreMetrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}

	resolverOpts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithMetricsRegistry(registry),
	}
	if cfg.Build.SchemaCacheSize > 0 {
		resolverOpts = append(resolverOpts, resolver.WithCacheSize(cfg.Build.SchemaCacheSize))
	}
	if cfg.Build.SchemaPrefetchWorkers > 0 {
		resolverOpts = append(resolverOpts, resolver.WithPrefetchWorkers(cfg.Build.SchemaPrefetchWorkers))
	}
	res, err := resolver.New(source, resolverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	formats := make([]export.Format, 0, len(cfg.Export.Formats))
	for _, name := range cfg.Export.Formats {
		format, err := export.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse export format: %w", err)
		}
		formats = append(formats, format)
	}

	eng, err := engine.NewEngine(engine.Dependencies{
		Source:   source,
		Resolver: res,
		Store:    graph.NewStore(),
		Exporter: &export.Exporter{Dir: cfg.Export.Dir, Prefix: cfg.Export.Prefix},
		Logger:   logger,
		Metrics:  coreMetrics,
		Config: engine.Config{
			KeyTypes:       cfg.Build.KeyTypes,
			SampleLimit:    cfg.Build.SampleLimit,
			SamplePrefetch: cfg.Build.SamplePrefetch,
			ExportFormats:  formats,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return eng, nil
}

// startMetricsServer exposes the registry when metrics are enabled.
// The build proceeds without the endpoint if the listener fails.
func startMetricsServer(cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) *metric.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	server := metric.NewServer(cfg.Metrics.Addr, "/metrics", registry)
	go func() {
		if err := server.Start(); err != nil {
			logger.Warn("metrics server failed", "error", err)
		}
	}()

	logger.Info("metrics server started", "address", server.Address())
	return server
}

// logReport summarizes the build outcome.
func logReport(logger *slog.Logger, report *engine.Report) {
	attrs := []any{
		"build_id", report.BuildID,
		"duration", timestamp.Between(report.StartedAt, report.FinishedAt).String(),
		"issues", len(report.Errors),
	}
	if report.TypeBuild != nil {
		attrs = append(attrs,
			"types_processed", report.TypeBuild.TypesProcessed,
			"relationships_found", report.TypeBuild.RelationshipsFound)
	}

	records, references := 0, 0
	for _, build := range report.RecordBuilds {
		records += build.RecordsProcessed
		references += build.ReferencesFound
	}
	attrs = append(attrs, "records_processed", records, "references_found", references)

	if report.Stats != nil {
		attrs = append(attrs, "nodes", report.Stats.Nodes, "edges", report.Stats.Edges)
	}

	logger.Info("build finished", attrs...)

	for _, path := range report.ExportPaths {
		logger.Info("export written", "path", path)
	}
	for _, issue := range report.Errors {
		logger.Warn("build issue", "detail", issue)
	}
}

// writeReport persists the build report as indented JSON.
func writeReport(path string, report *engine.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// validateExports checks node-link JSON exports against the embedded
// schema.
func validateExports(logger *slog.Logger, paths []string) error {
	for _, path := range paths {
		if filepath.Ext(path) != ".json" {
			continue
		}
		if err := export.ValidateNodeLink(path); err != nil {
			return fmt.Errorf("export validation failed: %w", err)
		}
		logger.Info("export validated", "path", path)
	}
	return nil
}

// splitCSV splits a comma-separated flag value, trimming whitespace
// and dropping empty entries.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

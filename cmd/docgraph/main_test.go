package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/docgraph/config"
	"github.com/c360/docgraph/engine"
	"github.com/c360/docgraph/export"
	"github.com/c360/docgraph/graph"
	"github.com/c360/docgraph/metric"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestValidateFlags checks the flag consistency rules
func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *CLIConfig
		wantErr string
	}{
		{name: "defaults are valid", cfg: &CLIConfig{}},
		{name: "explicit logging passes", cfg: &CLIConfig{LogLevel: "warn", LogFormat: "text"}},
		{name: "bad log level", cfg: &CLIConfig{LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad log format", cfg: &CLIConfig{LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "negative sample limit", cfg: &CLIConfig{SampleLimit: -1}, wantErr: "invalid sample limit"},
		{name: "negative timeout", cfg: &CLIConfig{Timeout: -time.Second}, wantErr: "invalid timeout"},
		{name: "missing config file", cfg: &CLIConfig{ConfigPath: "/nonexistent/config.json"}, wantErr: "does not exist"},
		{name: "version request skips checks", cfg: &CLIConfig{ShowVersion: true, LogLevel: "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFlags(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// TestApplyFlagOverrides verifies only explicitly set flags override
// the loaded configuration.
func TestApplyFlagOverrides(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)

	applyFlagOverrides(cfg, &CLIConfig{
		BaseURL:     "https://erp.example.com",
		KeyTypes:    "Customer, Supplier",
		SampleLimit: 25,
		Formats:     "json,gexf",
	})

	assert.Equal(t, "https://erp.example.com", cfg.Source.BaseURL)
	assert.Equal(t, []string{"Customer", "Supplier"}, cfg.Build.KeyTypes)
	assert.Equal(t, 25, cfg.Build.SampleLimit)
	assert.Equal(t, []string{"json", "gexf"}, cfg.Export.Formats)

	// Flags left at their zero values keep the loaded settings.
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Export.Validate)
}

// TestSplitCSV trims entries and drops blanks
func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"Customer", "Item"}, splitCSV("Customer, Item"))
	assert.Equal(t, []string{"json"}, splitCSV(",json,,"))
	assert.Empty(t, splitCSV(" , "))
}

// TestEnvHelpers checks the environment fallback parsing
func TestEnvHelpers(t *testing.T) {
	t.Setenv("DOCGRAPH_TEST_STR", "hello")
	t.Setenv("DOCGRAPH_TEST_BOOL", "true")
	t.Setenv("DOCGRAPH_TEST_INT", "42")
	t.Setenv("DOCGRAPH_TEST_DUR", "90s")

	assert.Equal(t, "hello", getEnv("DOCGRAPH_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("DOCGRAPH_TEST_MISSING", "fallback"))
	assert.True(t, getEnvBool("DOCGRAPH_TEST_BOOL", false))
	assert.False(t, getEnvBool("DOCGRAPH_TEST_MISSING", false))
	assert.Equal(t, 42, getEnvInt("DOCGRAPH_TEST_INT", 7))
	assert.Equal(t, 90*time.Second, getEnvDuration("DOCGRAPH_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("DOCGRAPH_TEST_MISSING", time.Second))
}

// TestBuildEngine wires a full engine from the default configuration
// without touching the network.
func TestBuildEngine(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)

	eng, err := buildEngine(cfg, testLogger(), metric.NewMetricsRegistry())
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

// TestBuildEngine_BadFormat surfaces unknown export formats at wiring
// time instead of mid-build.
func TestBuildEngine_BadFormat(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	cfg.Export.Formats = []string{"dot"}

	_, err = buildEngine(cfg, testLogger(), metric.NewMetricsRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export format")
}

// TestWriteReport round-trips the report JSON
func TestWriteReport(t *testing.T) {
	report := &engine.Report{
		BuildID:   "build-1",
		StartedAt: 1700000000000,
		Errors:    []string{"schema Ghost Type: empty schema"},
	}
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, writeReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded engine.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "build-1", decoded.BuildID)
	assert.Equal(t, report.Errors, decoded.Errors)
}

// TestValidateExports accepts generated node-link output and skips
// non-JSON paths.
func TestValidateExports(t *testing.T) {
	store := graph.NewStore()
	store.UpsertType("Customer", graph.TypeNode{Module: "Selling", FieldCount: 3})
	store.UpsertType("Sales Order", graph.TypeNode{Module: "Selling", FieldCount: 5})
	store.AddEdge("Sales Order", "Customer", "links_to", nil)

	exporter := &export.Exporter{Dir: t.TempDir()}
	path, err := exporter.Export(store.Nodes(), store.Edges(), export.FormatJSON)
	require.NoError(t, err)

	require.NoError(t, validateExports(testLogger(), []string{path, "graph.graphml"}))
}

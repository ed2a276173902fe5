package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/export"
)

// Config is the complete application configuration.
type Config struct {
	Source  SourceConfig  `json:"source"`            // backend connection
	Build   BuildConfig   `json:"build"`             // graph build tuning
	Export  ExportConfig  `json:"export"`            // serializer output
	Log     LogConfig     `json:"log"`               // logger setup
	Metrics MetricsConfig `json:"metrics,omitempty"` // Prometheus endpoint
}

// SourceConfig defines the backend connection. It maps onto the
// Frappe client configuration field for field.
type SourceConfig struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key,omitempty"`
	APISecret      string `json:"api_secret,omitempty"`
	Timeout        int    `json:"timeout,omitempty"` // seconds
	RetryCount     int    `json:"retry_count,omitempty"`
	ListLimit      int    `json:"list_limit,omitempty"`
	DiscoveryPorts []int  `json:"discovery_ports,omitempty"`
}

// BuildConfig tunes the build engine.
type BuildConfig struct {
	KeyTypes              []string `json:"key_types,omitempty"`    // types given instance-level discovery
	SampleLimit           int      `json:"sample_limit,omitempty"` // records sampled per key type
	SamplePrefetch        int      `json:"sample_prefetch,omitempty"`
	SchemaCacheSize       int      `json:"schema_cache_size,omitempty"`
	SchemaPrefetchWorkers int      `json:"schema_prefetch_workers,omitempty"`
}

// ExportConfig controls the export serializer.
type ExportConfig struct {
	Dir      string   `json:"dir,omitempty"`
	Prefix   string   `json:"prefix,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Validate bool     `json:"validate"` // check node-link output after writing
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // json or text
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// Validate checks the configuration for errors and normalizes
// case-insensitive fields in place.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate",
			"source.base_url is required")
	}
	if (c.Source.APIKey == "") != (c.Source.APISecret == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"source.api_key and source.api_secret must be set together")
	}

	if c.Build.SampleLimit < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"build.sample_limit cannot be negative")
	}
	if c.Build.SamplePrefetch < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"build.sample_prefetch cannot be negative")
	}
	if c.Build.SchemaCacheSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"build.schema_cache_size cannot be negative")
	}
	if c.Build.SchemaPrefetchWorkers < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"build.schema_prefetch_workers cannot be negative")
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	c.Log.Format = strings.ToLower(c.Log.Format)
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("log.format %q is not one of json, text", c.Log.Format))
	}

	for _, format := range c.Export.Formats {
		if _, err := export.ParseFormat(format); err != nil {
			return fmt.Errorf("export.formats: %w", err)
		}
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	// JSON round trip for the deep copy, shallow copy as fallback.
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// String renders the configuration as indented JSON with the API
// secret masked.
func (c *Config) String() string {
	clone := c.Clone()
	if clone.Source.APISecret != "" {
		clone.Source.APISecret = "***"
	}
	data, _ := json.MarshalIndent(clone, "", "  ")
	return string(data)
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return safeWriteFile(path, data)
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Update",
			"config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Loader handles configuration loading with layers and overrides.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		layers:    []string{},
		envPrefix: "DOCGRAPH",
	}
}

// AddLayer adds a configuration file layer. Later layers override
// earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables validation during Load.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges defaults, file layers and environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := l.getDefaults()

	for _, path := range l.layers {
		raw, err := l.loadRawLayer(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, raw)
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getDefaults returns the built-in configuration. Values mirror the
// component defaults so a file-less run behaves the same as wiring
// the components directly.
func (l *Loader) getDefaults() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        30,
			RetryCount:     3,
			ListLimit:      500,
			DiscoveryPorts: []int{8000, 8001, 8080, 9000},
		},
		Build: BuildConfig{
			KeyTypes:    []string{"Customer", "Item", "Sales Order", "Purchase Order", "Project"},
			SampleLimit: 10,
		},
		Export: ExportConfig{
			Dir:     ".",
			Prefix:  "knowledge_graph",
			Formats: []string{"json", "graphml"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// loadRawLayer reads one layer into a map. YAML and JSON layers are
// told apart by extension; both produce string-keyed maps that merge
// through the same path.
func (l *Loader) loadRawLayer(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := validateJSONDepth(data); err != nil {
			return nil, fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// mergeFromMap merges a raw layer over the base config, only
// overriding keys present in the layer.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := l.deepMergeMaps(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}
	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}

	return &merged
}

// deepMergeMaps recursively merges two maps, with override taking
// precedence.
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides. Values
// that fail basic validation are ignored.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := l.envValue("SOURCE_URL"); val != "" {
		cfg.Source.BaseURL = val
	}
	if val := l.envValue("API_KEY"); val != "" {
		cfg.Source.APIKey = val
	}
	if val := l.envValue("API_SECRET"); val != "" {
		cfg.Source.APISecret = val
	}
	if val := l.envValue("KEY_TYPES"); val != "" {
		cfg.Build.KeyTypes = splitList(val)
	}
	if val := l.envValue("SAMPLE_LIMIT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Build.SampleLimit = n
		}
	}
	if val := l.envValue("EXPORT_DIR"); val != "" {
		cfg.Export.Dir = val
	}
	if val := l.envValue("EXPORT_FORMATS"); val != "" {
		cfg.Export.Formats = splitList(val)
	}
	if val := l.envValue("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := l.envValue("LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := l.envValue("METRICS_ADDR"); val != "" {
		cfg.Metrics.Addr = val
		cfg.Metrics.Enabled = true
	}
}

// envValue reads one prefixed environment variable.
func (l *Loader) envValue(suffix string) string {
	key := l.envPrefix + "_" + suffix
	val := os.Getenv(key)
	if err := validateEnvVar(key, val); err != nil {
		return ""
	}
	return val
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	BaseURL         string
	APIKey          string
	APISecret       string
	OutputDir       string
	Formats         string
	KeyTypes        string
	SampleLimit     int
	ReportPath      string
	Timeout         time.Duration
	ValidateExports bool
	LogLevel        string
	LogFormat       string
	Debug           bool
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

// parseFlags parses command-line flags, falling back to DOCGRAPH_*
// environment variables for defaults.
func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Configuration file
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("DOCGRAPH_CONFIG", ""),
		"Path to configuration file, blank runs on defaults (env: DOCGRAPH_CONFIG)")
	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("DOCGRAPH_CONFIG", ""),
		"Path to configuration file (short form)")

	// Data source overrides
	flag.StringVar(&cfg.BaseURL, "url",
		getEnv("DOCGRAPH_SOURCE_URL", ""),
		"Backend base URL override (env: DOCGRAPH_SOURCE_URL)")
	flag.StringVar(&cfg.APIKey, "api-key",
		getEnv("DOCGRAPH_API_KEY", ""),
		"API key for token authentication (env: DOCGRAPH_API_KEY)")
	flag.StringVar(&cfg.APISecret, "api-secret",
		getEnv("DOCGRAPH_API_SECRET", ""),
		"API secret paired with the key (env: DOCGRAPH_API_SECRET)")

	// Build overrides
	flag.StringVar(&cfg.KeyTypes, "key-types",
		getEnv("DOCGRAPH_KEY_TYPES", ""),
		"Comma-separated types for instance-level discovery (env: DOCGRAPH_KEY_TYPES)")
	flag.IntVar(&cfg.SampleLimit, "sample-limit",
		getEnvInt("DOCGRAPH_SAMPLE_LIMIT", 0),
		"Records sampled per key type, 0 keeps the configured value (env: DOCGRAPH_SAMPLE_LIMIT)")
	flag.DurationVar(&cfg.Timeout, "timeout",
		getEnvDuration("DOCGRAPH_TIMEOUT", 0),
		"Overall build timeout, 0 disables (env: DOCGRAPH_TIMEOUT)")

	// Export overrides
	flag.StringVar(&cfg.OutputDir, "output",
		getEnv("DOCGRAPH_EXPORT_DIR", ""),
		"Export output directory override (env: DOCGRAPH_EXPORT_DIR)")
	flag.StringVar(&cfg.OutputDir, "o",
		getEnv("DOCGRAPH_EXPORT_DIR", ""),
		"Export output directory (short form)")
	flag.StringVar(&cfg.Formats, "formats",
		getEnv("DOCGRAPH_EXPORT_FORMATS", ""),
		"Comma-separated export formats: json, graphml, gexf (env: DOCGRAPH_EXPORT_FORMATS)")
	flag.BoolVar(&cfg.ValidateExports, "validate-exports",
		getEnvBool("DOCGRAPH_VALIDATE_EXPORTS", false),
		"Validate node-link JSON exports after writing (env: DOCGRAPH_VALIDATE_EXPORTS)")

	// Report output
	flag.StringVar(&cfg.ReportPath, "report",
		getEnv("DOCGRAPH_REPORT", ""),
		"Write the build report as JSON to this path (env: DOCGRAPH_REPORT)")

	// Logging configuration
	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DOCGRAPH_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: DOCGRAPH_LOG_LEVEL)")
	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DOCGRAPH_LOG_FORMAT", ""),
		"Log format: json, text (env: DOCGRAPH_LOG_FORMAT)")
	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("DOCGRAPH_DEBUG", false),
		"Enable debug logging (env: DOCGRAPH_DEBUG)")

	// Operational flags
	flag.BoolVar(&cfg.Validate, "validate", false,
		"Validate configuration and exit")
	flag.BoolVar(&cfg.ShowVersion, "version", false,
		"Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false,
		"Show version information (short form)")
	flag.BoolVar(&cfg.ShowHelp, "help", false,
		"Show detailed help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false,
		"Show detailed help information (short form)")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

// validateFlags checks flag values for consistency
func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("configuration file does not exist: %s", cfg.ConfigPath)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if cfg.LogLevel != "" && !contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level '%s', must be one of: %v", cfg.LogLevel, validLogLevels)
	}

	validLogFormats := []string{"json", "text"}
	if cfg.LogFormat != "" && !contains(validLogFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format '%s', must be one of: %v", cfg.LogFormat, validLogFormats)
	}

	if cfg.SampleLimit < 0 {
		return fmt.Errorf("invalid sample limit %d, must not be negative", cfg.SampleLimit)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s, must not be negative", cfg.Timeout)
	}

	return nil
}

// printDetailedHelp shows comprehensive help information
func printDetailedHelp() {
	fmt.Printf(`%s - Business-entity knowledge graph builder

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    Connects to an ERP backend, discovers document types and their
    relationships, samples records for key business entities, and
    exports the resulting knowledge graph for analysis tooling.

OPTIONS:
`, appName, appName)

	flag.PrintDefaults()

	fmt.Printf(`
EXAMPLES:
    # Build against a local backend with defaults
    %s

    # Build with a configuration file and write all formats
    %s --config config.json --formats json,graphml,gexf

    # Build against a remote instance with token authentication
    %s --url https://erp.example.com --api-key KEY --api-secret SECRET

    # Sample more records for selected entities and save the report
    %s --key-types "Customer,Supplier,Item" --sample-limit 50 --report build.json

    # Validate configuration without building
    %s --config config.json --validate

ENVIRONMENT:
    Every option reads its default from the matching DOCGRAPH_* variable,
    and a .env file in the working directory is loaded before parsing.

For more information, see the project documentation.
`, appName, appName, appName, appName, appName)
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a fallback default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a fallback default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

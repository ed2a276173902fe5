// Package config provides configuration management for docgraph runs.
//
// Configuration is assembled from three sources, later ones winning:
// built-in defaults, file layers (JSON or YAML), and DOCGRAPH_*
// environment variables.
//
// # Core Components
//
// Config: the complete application configuration. Source holds the
// backend connection, Build tunes the engine, Export controls the
// serializer, Log and Metrics cover observability.
//
// Loader: loads configuration with layer merging and environment
// overrides. Layers merge key by key, so an override file only needs
// the fields it changes.
//
// SafeConfig: thread-safe wrapper using RWMutex and deep cloning to
// prevent concurrent access issues and accidental mutations.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/production.yaml") // overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Overrides
//
// Environment variables override file values:
//
//	# Override the backend URL
//	export DOCGRAPH_SOURCE_URL="https://erp.example.com"
//
//	# Override the sampled key types (comma-separated)
//	export DOCGRAPH_KEY_TYPES="Customer,Supplier,Item"
//
// Recognized suffixes: SOURCE_URL, API_KEY, API_SECRET, KEY_TYPES,
// SAMPLE_LIMIT, EXPORT_DIR, EXPORT_FORMATS, LOG_LEVEL, LOG_FORMAT,
// METRICS_ADDR.
//
// # Layer Merging
//
// Layers are merged with last-wins semantics:
//
//	base.json:
//	  {"source": {"base_url": "http://localhost:8000", "timeout": 30}}
//
//	production.json:
//	  {"source": {"base_url": "https://erp.example.com"}}
//
//	Result:
//	  {"source": {"base_url": "https://erp.example.com", "timeout": 30}}
//
// # Security
//
// The package includes file handling validation:
//   - File size limits (10MB max) to prevent memory exhaustion
//   - JSON depth validation (100 levels max) on JSON layers
//   - Path validation to prevent directory traversal
//   - Regular file checks (no symlinks or device files)
package config

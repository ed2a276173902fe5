package datasource

import "context"

// Source provides read access to a business platform backend. A Source
// exposes the entity types the backend hosts, their field schemas, and
// sample records for relationship discovery. The build pipeline treats
// a Source as its only window onto the backend, so implementations
// carry all transport concerns (authentication, retries, timeouts).
//
// Implementations must be safe for concurrent use; the pipeline
// fetches schemas and records from multiple goroutines.
type Source interface {
	// CheckConnection verifies the backend is reachable. An unreachable
	// backend yields a status with Connected false and a nil error;
	// errors are reserved for failures outside normal reachability
	// probing, such as a cancelled context.
	CheckConnection(ctx context.Context) (*ConnectionStatus, error)

	// ListTypes returns the names of the entity types the backend
	// hosts. An empty result is valid and means the backend exposes
	// nothing to graph.
	ListTypes(ctx context.Context) ([]string, error)

	// GetSchema returns the field schema for a single entity type.
	GetSchema(ctx context.Context, typeName string) (*Schema, error)

	// SampleRecords returns up to limit records of the given type in
	// backend order.
	SampleRecords(ctx context.Context, typeName string, limit int) ([]Record, error)
}

// ConnectionStatus reports the outcome of a connectivity check.
type ConnectionStatus struct {
	// Connected indicates whether the backend answered a ping.
	Connected bool `json:"connected"`

	// Method names the transport that established the connection,
	// "api" for REST access. Empty when not connected.
	Method string `json:"method,omitempty"`

	// Detail carries the resolved base URL on success or a short
	// failure description otherwise.
	Detail string `json:"detail,omitempty"`

	// InstancesFound counts backend instances that answered probes
	// during the check, including the configured one.
	InstancesFound int `json:"instances_found"`
}

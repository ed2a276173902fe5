package vocabulary

import (
	"sync"
)

// KindMetadata describes a relationship kind: what it means and which
// graph levels its endpoints live in.
type KindMetadata struct {
	Name        string
	Description string
	SourceLevel Level
	TargetLevel Level

	// Dynamic marks kinds whose names are generated per source field
	// (references_<field>) rather than drawn from a fixed set.
	Dynamic bool
}

// Global kind registry
var (
	registryMu   sync.RWMutex
	kindRegistry = make(map[string]KindMetadata)
)

// Option is a functional option for configuring kind registration.
type Option func(*KindMetadata)

// WithDescription sets the human-readable description of the kind.
func WithDescription(desc string) Option {
	return func(m *KindMetadata) {
		m.Description = desc
	}
}

// WithLevels sets the graph levels the kind's source and target endpoints
// live in.
func WithLevels(source, target Level) Option {
	return func(m *KindMetadata) {
		m.SourceLevel = source
		m.TargetLevel = target
	}
}

// WithDynamic marks the kind as a per-field generated family rather than
// a fixed name.
func WithDynamic() Option {
	return func(m *KindMetadata) {
		m.Dynamic = true
	}
}

// Register registers a relationship kind with its metadata in the global
// registry. This should be called during package initialization (init
// functions).
//
// If a kind is already registered, it will be overwritten.
//
// Example:
//
//	Register(KindLinksTo,
//	    WithDescription("Schema-level link from a doctype's Link field to its target doctype"),
//	    WithLevels(LevelDoctype, LevelDoctype))
func Register(name string, opts ...Option) {
	meta := KindMetadata{Name: name}

	// Apply functional options
	for _, opt := range opts {
		opt(&meta)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	kindRegistry[name] = meta
}

// RegisterKind registers a kind using the KindMetadata struct directly.
// New code should use Register() with functional options.
func RegisterKind(meta KindMetadata) {
	registryMu.Lock()
	defer registryMu.Unlock()

	kindRegistry[meta.Name] = meta
}

// GetKindMetadata retrieves metadata for a relationship kind. Dynamic
// reference kinds (references_<field>) that are not explicitly registered
// resolve to synthesized document-level metadata. Returns nil for unknown
// kinds. This function is thread-safe and can be called concurrently.
func GetKindMetadata(kind string) *KindMetadata {
	registryMu.RLock()
	if meta, exists := kindRegistry[kind]; exists {
		registryMu.RUnlock()
		// Return a copy to prevent external modification
		metaCopy := meta
		return &metaCopy
	}
	registryMu.RUnlock()

	if field, ok := ReferenceField(kind); ok {
		return &KindMetadata{
			Name:        kind,
			Description: "Documents related through a shared " + field + " value",
			SourceLevel: LevelDocument,
			TargetLevel: LevelDocument,
			Dynamic:     true,
		}
	}

	return nil
}

// IsValidKind reports whether the kind is registered or is a well-formed
// dynamic reference kind.
func IsValidKind(kind string) bool {
	return GetKindMetadata(kind) != nil
}

// ListRegisteredKinds returns a list of all registered kind names.
// Useful for debugging and introspection.
func ListRegisteredKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(kindRegistry))
	for name := range kindRegistry {
		kinds = append(kinds, name)
	}
	return kinds
}

// ClearRegistry clears all registered kinds.
// This is primarily useful for testing.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	kindRegistry = make(map[string]KindMetadata)
}

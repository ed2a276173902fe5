package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Options(t *testing.T) {
	Register("test_kind",
		WithDescription("A test relationship"),
		WithLevels(LevelDocument, LevelDocument))
	defer func() {
		// Remove the test entry without disturbing init-registered kinds
		registryMu.Lock()
		delete(kindRegistry, "test_kind")
		registryMu.Unlock()
	}()

	meta := GetKindMetadata("test_kind")
	require.NotNil(t, meta)
	assert.Equal(t, "test_kind", meta.Name)
	assert.Equal(t, "A test relationship", meta.Description)
	assert.Equal(t, LevelDocument, meta.SourceLevel)
	assert.Equal(t, LevelDocument, meta.TargetLevel)
	assert.False(t, meta.Dynamic)
}

func TestRegister_Overwrite(t *testing.T) {
	Register("overwrite_kind", WithDescription("first"))
	Register("overwrite_kind", WithDescription("second"))
	defer func() {
		registryMu.Lock()
		delete(kindRegistry, "overwrite_kind")
		registryMu.Unlock()
	}()

	meta := GetKindMetadata("overwrite_kind")
	require.NotNil(t, meta)
	assert.Equal(t, "second", meta.Description)
}

func TestRegisterKind_Struct(t *testing.T) {
	RegisterKind(KindMetadata{
		Name:        "struct_kind",
		Description: "Registered via struct",
		SourceLevel: LevelDoctype,
		TargetLevel: LevelDocument,
	})
	defer func() {
		registryMu.Lock()
		delete(kindRegistry, "struct_kind")
		registryMu.Unlock()
	}()

	meta := GetKindMetadata("struct_kind")
	require.NotNil(t, meta)
	assert.Equal(t, "Registered via struct", meta.Description)
	assert.Equal(t, LevelDoctype, meta.SourceLevel)
	assert.Equal(t, LevelDocument, meta.TargetLevel)
}

func TestGetKindMetadata_ReturnsCopy(t *testing.T) {
	meta := GetKindMetadata(KindLinksTo)
	require.NotNil(t, meta)

	// Mutating the returned copy must not affect the registry
	meta.Description = "mutated"

	fresh := GetKindMetadata(KindLinksTo)
	require.NotNil(t, fresh)
	assert.NotEqual(t, "mutated", fresh.Description)
}

func TestGetKindMetadata_DynamicReference(t *testing.T) {
	// Not explicitly registered, but synthesized from the prefix
	meta := GetKindMetadata("references_customer")
	require.NotNil(t, meta)

	assert.Equal(t, "references_customer", meta.Name)
	assert.True(t, meta.Dynamic)
	assert.Equal(t, LevelDocument, meta.SourceLevel)
	assert.Equal(t, LevelDocument, meta.TargetLevel)
	assert.Contains(t, meta.Description, "customer")
}

func TestGetKindMetadata_Unknown(t *testing.T) {
	assert.Nil(t, GetKindMetadata("no_such_kind"))
	assert.Nil(t, GetKindMetadata(""))
	assert.False(t, IsValidKind("no_such_kind"))
}

func TestListRegisteredKinds(t *testing.T) {
	kinds := ListRegisteredKinds()

	kindSet := make(map[string]bool)
	for _, kind := range kinds {
		kindSet[kind] = true
	}

	for _, expected := range []string{KindLinksTo, KindHasChildTable, KindInstanceOf} {
		assert.True(t, kindSet[expected],
			"Kind %s should be registered at init", expected)
	}
}

func TestClearRegistry(t *testing.T) {
	// Snapshot the registry so other tests see the init-registered kinds
	registryMu.RLock()
	snapshot := make(map[string]KindMetadata, len(kindRegistry))
	for name, meta := range kindRegistry {
		snapshot[name] = meta
	}
	registryMu.RUnlock()
	defer func() {
		registryMu.Lock()
		kindRegistry = snapshot
		registryMu.Unlock()
	}()

	ClearRegistry()

	assert.Empty(t, ListRegisteredKinds())
	assert.Nil(t, GetKindMetadata(KindLinksTo))

	// Dynamic reference kinds still resolve; they need no registration
	assert.NotNil(t, GetKindMetadata("references_project"))
}

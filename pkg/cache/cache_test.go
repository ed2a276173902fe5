package cache

import (
	"fmt"
	"testing"

	"github.com/c360/docgraph/errors"
)

func TestNewLRU_Validation(t *testing.T) {
	if _, err := NewLRU[string](0); err == nil {
		t.Error("expected error for zero maxSize")
	}
	if _, err := NewLRU[string](-5); err == nil {
		t.Error("expected error for negative maxSize")
	}
	c, err := NewLRU[string](3)
	if err != nil {
		t.Fatalf("NewLRU failed: %v", err)
	}
	defer c.Close()
}

func TestLRU_SetGet(t *testing.T) {
	c, err := NewLRU[string](3)
	if err != nil {
		t.Fatalf("NewLRU failed: %v", err)
	}
	defer c.Close()

	created, err := c.Set("Customer", "schema-a")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !created {
		t.Error("first Set should create a new entry")
	}

	value, found := c.Get("Customer")
	if !found {
		t.Fatal("expected Customer to be cached")
	}
	if value != "schema-a" {
		t.Errorf("expected schema-a, got %s", value)
	}

	if _, found := c.Get("Supplier"); found {
		t.Error("Supplier was never cached")
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	c, _ := NewLRU[int](3)
	defer c.Close()

	c.Set("a", 1)
	created, err := c.Set("a", 2)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if created {
		t.Error("Set on existing key should report update, not create")
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("expected updated value 2, got %d", v)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestLRU_EvictionOrder(t *testing.T) {
	c, _ := NewLRU[int](3)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes least recently used
	c.Get("a")

	c.Set("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should still be cached", key)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
}

func TestLRU_EvictionCallback(t *testing.T) {
	var evictedKeys []string
	callback := func(key string, value int) {
		evictedKeys = append(evictedKeys, key)
	}

	c, _ := NewLRU[int](2, WithEvictionCallback(callback))
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a"

	if len(evictedKeys) != 1 || evictedKeys[0] != "a" {
		t.Errorf("expected eviction callback for a, got %v", evictedKeys)
	}

	c.Clear()
	if len(evictedKeys) != 3 {
		t.Errorf("Clear should report remaining entries via callback, got %v", evictedKeys)
	}
}

func TestLRU_Delete(t *testing.T) {
	c, _ := NewLRU[int](3)
	defer c.Close()

	c.Set("a", 1)

	deleted, err := c.Delete("a")
	if err != nil || !deleted {
		t.Errorf("Delete(a) = %v, %v; expected true, nil", deleted, err)
	}
	deleted, err = c.Delete("a")
	if err != nil || deleted {
		t.Errorf("second Delete(a) = %v, %v; expected false, nil", deleted, err)
	}
}

func TestLRU_Keys(t *testing.T) {
	c, _ := NewLRU[int](3)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used

	keys := c.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected MRU order [a b], got %v", keys)
	}
}

func TestLRU_EmptyKeyRejected(t *testing.T) {
	c, _ := NewLRU[int](3)
	defer c.Close()

	if _, err := c.Set("", 1); !errors.IsInvalid(err) {
		t.Errorf("empty key should be rejected as invalid, got %v", err)
	}
	if _, err := c.Delete(""); !errors.IsInvalid(err) {
		t.Errorf("empty key delete should be rejected as invalid, got %v", err)
	}
}

func TestLRU_Stats(t *testing.T) {
	c, _ := NewLRU[int](2)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts
	c.Get("b")    // hit
	c.Get("x")    // miss

	stats := c.Stats()
	if stats.Sets() != 3 {
		t.Errorf("expected 3 sets, got %d", stats.Sets())
	}
	if stats.Hits() != 1 || stats.Misses() != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", stats.Hits(), stats.Misses())
	}
	if stats.Evictions() != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions())
	}
	if ratio := stats.HitRatio(); ratio != 0.5 {
		t.Errorf("expected hit ratio 0.5, got %f", ratio)
	}

	summary := stats.Summary()
	if summary.CurrentSize != 2 || summary.MaxSize != 2 {
		t.Errorf("unexpected size summary: %+v", summary)
	}
}

func TestLRU_ManyEntries(t *testing.T) {
	c, _ := NewLRU[int](100)
	defer c.Close()

	for i := 0; i < 250; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}

	if c.Size() != 100 {
		t.Errorf("expected size capped at 100, got %d", c.Size())
	}
	// The newest 100 survive
	if _, found := c.Get("key-249"); !found {
		t.Error("newest entry should be present")
	}
	if _, found := c.Get("key-0"); found {
		t.Error("oldest entry should have been evicted")
	}
}

package registry

import (
	"testing"
	"time"

	"github.com/mesh-intelligence/larder/pkg/store"
)

func TestCacheHitWithinTTL(t *testing.T) {
	c := newReadCache("cache_test_hit", time.Minute)

	c.put("k", store.NewValue(map[string]any{"f": "v"}))
	v, ok := c.get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.Data["f"] != "v" {
		t.Errorf("unexpected data %v", v.Data)
	}
}

func TestCacheMissAbsent(t *testing.T) {
	c := newReadCache("cache_test_absent", time.Minute)

	if _, ok := c.get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newReadCache("cache_test_expiry", 30*time.Millisecond)

	c.put("k", store.NewValue(map[string]any{"f": "v"}))
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.get("k"); ok {
		t.Error("expected stale entry to miss")
	}
	// The stale entry is dropped, not just skipped.
	if _, loaded := c.entries.Load("k"); loaded {
		t.Error("stale entry survived lookup")
	}
}

func TestCacheEvict(t *testing.T) {
	c := newReadCache("cache_test_evict", time.Minute)

	c.put("k", store.NewValue(map[string]any{"f": "v"}))
	c.evict("k")
	if _, ok := c.get("k"); ok {
		t.Error("expected miss after evict")
	}

	// Evicting an absent key is a no-op.
	c.evict("missing")
}

func TestCacheCopiesData(t *testing.T) {
	c := newReadCache("cache_test_copies", time.Minute)

	data := map[string]any{"f": "v"}
	c.put("k", store.NewValue(data))

	// Mutating the map given to put must not reach the cache.
	data["f"] = "poisoned"
	v, ok := c.get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.Data["f"] != "v" {
		t.Errorf("put aliased caller map: %v", v.Data)
	}

	// Mutating the map returned by get must not reach the cache either.
	v.Data["f"] = "poisoned"
	again, ok := c.get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if again.Data["f"] != "v" {
		t.Errorf("get aliased cached map: %v", again.Data)
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := newReadCache("cache_test_overwrite", time.Minute)

	c.put("k", store.NewValue(map[string]any{"rev": "1"}))
	c.put("k", store.NewValue(map[string]any{"rev": "2"}))

	v, ok := c.get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.Data["rev"] != "2" {
		t.Errorf("expected latest value, got %v", v.Data)
	}
}

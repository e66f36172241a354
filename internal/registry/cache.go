// This file implements the bounded-freshness read cache used by KV tables.
// The cache is file-scoped: every table instance over one backing file
// shares the same cache, so a write through any instance refreshes what the
// others read. Entries older than the TTL are evicted on lookup and the
// read falls through to the engine.
package registry

import (
	"fmt"
	"maps"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/mesh-intelligence/larder/pkg/store"
)

type cacheEntry struct {
	fetchedAt time.Time
	value     store.Value
}

// readCache maps keys to recently read or written values.
//
// Thread-safety: all methods are safe for concurrent use.
type readCache struct {
	ttl     time.Duration
	entries *xsync.MapOf[string, cacheEntry]

	hits   *metrics.Counter
	misses *metrics.Counter
}

func newReadCache(table string, ttl time.Duration) *readCache {
	return &readCache{
		ttl:     ttl,
		entries: xsync.NewMapOf[string, cacheEntry](),
		hits:    metrics.GetOrCreateCounter(fmt.Sprintf(`larder_cache_hits_total{table=%q}`, table)),
		misses:  metrics.GetOrCreateCounter(fmt.Sprintf(`larder_cache_misses_total{table=%q}`, table)),
	}
}

// get returns the cached value for key if its entry is younger than the
// TTL. Stale entries are evicted and count as misses. The returned Data map
// is a top-level copy so callers cannot mutate cached state.
func (c *readCache) get(key string) (store.Value, bool) {
	e, ok := c.entries.Load(key)
	if !ok {
		c.misses.Inc()
		return store.Value{}, false
	}
	if time.Since(e.fetchedAt) >= c.ttl {
		c.entries.Delete(key)
		c.misses.Inc()
		return store.Value{}, false
	}
	c.hits.Inc()
	v := e.value
	v.Data = maps.Clone(v.Data)
	return v, true
}

// put stores value under key with the current time as its fetch time.
func (c *readCache) put(key string, v store.Value) {
	v.Data = maps.Clone(v.Data)
	c.entries.Store(key, cacheEntry{fetchedAt: time.Now(), value: v})
}

// evict drops the entry for key, if any.
func (c *readCache) evict(key string) {
	c.entries.Delete(key)
}

// clear drops every entry. Holders of this cache observe the purge
// immediately.
func (c *readCache) clear() {
	c.entries.Clear()
}

// This file implements the single-key table: validated CRUD over exact key
// match plus the bounded-freshness read cache.
package registry

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/store"
)

var _ store.KVTable = (*kvTable)(nil)

type kvTable struct {
	tableBase
	cache *readCache
}

func (t *kvTable) Features() store.Feature {
	return store.FeatureReadCache
}

func validateKey(key string) error {
	if key == "" {
		return store.ErrInvalidKey
	}
	return nil
}

// Set inserts or replaces the document for key and refreshes the cache with
// the value just written. Data is normalized through the JSON codec before
// either write, so cache hits and engine reads observe the same shapes.
func (t *kvTable) Set(key string, value store.Value) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := value.Validate(); err != nil {
		return err
	}
	data, err := normalizeData(value.Data)
	if err != nil {
		return err
	}
	value.Data = data

	now := time.Now().UTC()
	pred := engine.Predicate{fieldKey: key}

	// The engine replaces whole documents, so the original write time must
	// be re-read before every upsert to survive the overwrite.
	existing, found, err := t.col.Get(pred)
	if err != nil {
		return fmt.Errorf("reading current value for %s: %w", key, err)
	}
	switch {
	case found:
		prev, err := decodeValue(existing[fieldValue])
		if err != nil {
			t.logger.Warn("stored value malformed, resetting created_at",
				zap.String("key", key), zap.Error(err))
			value.CreatedAt = now
		} else {
			value.CreatedAt = prev.CreatedAt
		}
	case value.CreatedAt.IsZero():
		value.CreatedAt = now
	}
	value.UpdatedAt = now

	doc := engine.Document{fieldKey: key, fieldValue: encodeValue(value)}
	if err := t.col.Upsert(doc, pred); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	t.cache.put(key, value)
	t.logger.Debug("set", zap.String("key", key))
	return nil
}

// Get returns the value for key, serving cache entries younger than the TTL
// without touching the engine. Absence is reported, not cached.
func (t *kvTable) Get(key string) (store.Value, bool, error) {
	if err := validateKey(key); err != nil {
		return store.Value{}, false, err
	}
	if v, ok := t.cache.get(key); ok {
		return v, true, nil
	}

	doc, found, err := t.col.Get(engine.Predicate{fieldKey: key})
	if err != nil {
		return store.Value{}, false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !found {
		return store.Value{}, false, nil
	}
	v, err := decodeValue(doc[fieldValue])
	if err != nil {
		return store.Value{}, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	t.cache.put(key, v)
	return v, true, nil
}

// Delete evicts the cache entry and removes the document for key.
func (t *kvTable) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	t.cache.evict(key)
	n, err := t.col.Remove(engine.Predicate{fieldKey: key})
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	t.logger.Debug("delete", zap.String("key", key), zap.Bool("removed", n > 0))
	return n > 0, nil
}

// Keys enumerates the backing store; the cache holds a subset and is never
// consulted here.
func (t *kvTable) Keys() ([]string, error) {
	docs, err := t.col.All()
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		key, err := docKey(doc, fieldKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// All returns the full key-to-value mapping from the backing store.
func (t *kvTable) All() (map[string]store.Value, error) {
	docs, err := t.col.All()
	if err != nil {
		return nil, fmt.Errorf("listing values: %w", err)
	}
	out := make(map[string]store.Value, len(docs))
	for _, doc := range docs {
		key, err := docKey(doc, fieldKey)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(doc[fieldValue])
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

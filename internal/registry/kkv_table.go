// This file implements the composite-key table: validated CRUD over exact
// (primary, secondary) key match. No read cache.
package registry

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/store"
)

var _ store.KKVTable = (*kkvTable)(nil)

type kkvTable struct {
	tableBase
}

func (t *kkvTable) Features() store.Feature {
	return 0
}

func validateKeyPair(pkey, skey string) error {
	if pkey == "" || skey == "" {
		return store.ErrInvalidKey
	}
	return nil
}

// Set inserts or replaces the document for the exact (pkey, skey) pair.
// Data is normalized through the JSON codec before the write.
func (t *kkvTable) Set(pkey, skey string, value store.Value) error {
	if err := validateKeyPair(pkey, skey); err != nil {
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
	pred := engine.Predicate{fieldKey1: pkey, fieldKey2: skey}

	existing, found, err := t.col.Get(pred)
	if err != nil {
		return fmt.Errorf("reading current value for %s/%s: %w", pkey, skey, err)
	}
	switch {
	case found:
		prev, err := decodeValue(existing[fieldValue])
		if err != nil {
			t.logger.Warn("stored value malformed, resetting created_at",
				zap.String("pkey", pkey), zap.String("skey", skey), zap.Error(err))
			value.CreatedAt = now
		} else {
			value.CreatedAt = prev.CreatedAt
		}
	case value.CreatedAt.IsZero():
		value.CreatedAt = now
	}
	value.UpdatedAt = now

	doc := engine.Document{
		fieldKey1:  pkey,
		fieldKey2:  skey,
		fieldValue: encodeValue(value),
	}
	if err := t.col.Upsert(doc, pred); err != nil {
		return fmt.Errorf("writing %s/%s: %w", pkey, skey, err)
	}
	t.logger.Debug("set", zap.String("pkey", pkey), zap.String("skey", skey))
	return nil
}

// Get returns the value for the exact (pkey, skey) pair.
func (t *kkvTable) Get(pkey, skey string) (store.Value, bool, error) {
	if err := validateKeyPair(pkey, skey); err != nil {
		return store.Value{}, false, err
	}
	doc, found, err := t.col.Get(engine.Predicate{fieldKey1: pkey, fieldKey2: skey})
	if err != nil {
		return store.Value{}, false, fmt.Errorf("reading %s/%s: %w", pkey, skey, err)
	}
	if !found {
		return store.Value{}, false, nil
	}
	v, err := decodeValue(doc[fieldValue])
	if err != nil {
		return store.Value{}, false, fmt.Errorf("decoding %s/%s: %w", pkey, skey, err)
	}
	return v, true, nil
}

// Delete removes the document for the exact (pkey, skey) pair.
func (t *kkvTable) Delete(pkey, skey string) (bool, error) {
	if err := validateKeyPair(pkey, skey); err != nil {
		return false, err
	}
	n, err := t.col.Remove(engine.Predicate{fieldKey1: pkey, fieldKey2: skey})
	if err != nil {
		return false, fmt.Errorf("deleting %s/%s: %w", pkey, skey, err)
	}
	t.logger.Debug("delete",
		zap.String("pkey", pkey), zap.String("skey", skey), zap.Bool("removed", n > 0))
	return n > 0, nil
}

// PrimaryKeys returns the distinct primary keys across all documents.
func (t *kkvTable) PrimaryKeys() ([]string, error) {
	docs, err := t.col.All()
	if err != nil {
		return nil, fmt.Errorf("listing primary keys: %w", err)
	}
	seen := make(map[string]struct{}, len(docs))
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		pkey, err := docKey(doc, fieldKey1)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[pkey]; ok {
			continue
		}
		seen[pkey] = struct{}{}
		keys = append(keys, pkey)
	}
	return keys, nil
}

// SecondaryKeys returns every secondary key stored under pkey.
func (t *kkvTable) SecondaryKeys(pkey string) ([]string, error) {
	if pkey == "" {
		return nil, store.ErrInvalidKey
	}
	docs, err := t.col.Search(engine.Predicate{fieldKey1: pkey})
	if err != nil {
		return nil, fmt.Errorf("listing secondary keys for %s: %w", pkey, err)
	}
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		skey, err := docKey(doc, fieldKey2)
		if err != nil {
			return nil, err
		}
		keys = append(keys, skey)
	}
	return keys, nil
}

// All returns the nested pkey-to-skey-to-value mapping.
func (t *kkvTable) All() (map[string]map[string]store.Value, error) {
	docs, err := t.col.All()
	if err != nil {
		return nil, fmt.Errorf("listing values: %w", err)
	}
	out := make(map[string]map[string]store.Value)
	for _, doc := range docs {
		pkey, err := docKey(doc, fieldKey1)
		if err != nil {
			return nil, err
		}
		skey, err := docKey(doc, fieldKey2)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(doc[fieldValue])
		if err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", pkey, skey, err)
		}
		if out[pkey] == nil {
			out[pkey] = make(map[string]store.Value)
		}
		out[pkey][skey] = v
	}
	return out, nil
}

// This file implements document encoding for stored values and table
// metadata. Documents cross the engine boundary as flat maps with
// RFC3339Nano timestamp strings; hydration back into typed records is
// explicit so malformed documents fail loudly instead of half-decoding.
package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/store"
)

// Document field names used by every table shape.
const (
	fieldKey   = "key"
	fieldKey1  = "key1"
	fieldKey2  = "key2"
	fieldValue = "value"
)

const timeFormat = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func decodeTime(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp is %T, not a string", raw)
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeValue(v store.Value) map[string]any {
	return map[string]any{
		"created_at": encodeTime(v.CreatedAt),
		"updated_at": encodeTime(v.UpdatedAt),
		"data":       v.Data,
	}
}

func decodeValue(raw any) (store.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return store.Value{}, fmt.Errorf("stored value is %T, not a mapping", raw)
	}

	var v store.Value
	var err error
	if v.CreatedAt, err = decodeTime(m["created_at"]); err != nil {
		return store.Value{}, fmt.Errorf("created_at: %w", err)
	}
	if v.UpdatedAt, err = decodeTime(m["updated_at"]); err != nil {
		return store.Value{}, fmt.Errorf("updated_at: %w", err)
	}
	data, ok := m["data"].(map[string]any)
	if !ok {
		return store.Value{}, fmt.Errorf("stored data is %T, not a mapping", m["data"])
	}
	v.Data = data
	return v, nil
}

// normalizeData passes data through the JSON codec so every read path
// observes the shapes the engines store: numbers as float64, nested values
// as plain maps and slices. Data the codec cannot represent fails value
// validation.
func normalizeData(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidValue, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidValue, err)
	}
	return out, nil
}

// docKey extracts the string under field, failing on absent or non-string
// values.
func docKey(doc engine.Document, field string) (string, error) {
	s, ok := doc[field].(string)
	if !ok {
		return "", fmt.Errorf("document field %s is %T, not a string", field, doc[field])
	}
	return s, nil
}

func encodeTableInfo(info store.TableInfo) engine.Document {
	return engine.Document{
		"id":         info.ID,
		"name":       info.Name,
		"type":       string(info.Type),
		"created_at": encodeTime(info.CreatedAt),
		"updated_at": encodeTime(info.UpdatedAt),
	}
}

func decodeTableInfo(doc engine.Document) (store.TableInfo, error) {
	var info store.TableInfo
	var err error

	if info.Name, err = docKey(doc, "name"); err != nil {
		return store.TableInfo{}, err
	}
	typ, err := docKey(doc, "type")
	if err != nil {
		return store.TableInfo{}, err
	}
	info.Type = store.TableType(typ)

	// Old registries may predate IDs; tolerate their absence.
	if id, ok := doc["id"].(string); ok {
		info.ID = id
	}
	if info.CreatedAt, err = decodeTime(doc["created_at"]); err != nil {
		return store.TableInfo{}, fmt.Errorf("table %s created_at: %w", info.Name, err)
	}
	if info.UpdatedAt, err = decodeTime(doc["updated_at"]); err != nil {
		return store.TableInfo{}, fmt.Errorf("table %s updated_at: %w", info.Name, err)
	}
	return info, nil
}

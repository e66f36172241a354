// This file implements JSONL export and import for tables. Dumps are one
// document per line, written with the temp-file, fsync, rename pattern so a
// crashed dump never truncates an existing file. Loads skip malformed lines
// so a damaged dump restores what it can.
package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/store"
)

// DumpTable writes every document of the named table to path as JSONL.
func (s *Store) DumpTable(name, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.ErrClosed
	}
	if _, err := s.resolveTable(name); err != nil {
		return err
	}
	h, err := s.pool.Acquire(s.tablePath(name))
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	defer h.Release()
	col, err := h.Engine().Collection(name)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	docs, err := col.All()
	if err != nil {
		return fmt.Errorf("reading table %s: %w", name, err)
	}
	records := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		rec, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		records = append(records, rec)
	}
	if err := writeJSONL(path, records); err != nil {
		return err
	}
	s.logger.Debug("table dumped",
		zap.String("table", name), zap.Int("documents", len(records)))
	return nil
}

// LoadTable imports JSONL records into the named table, upserting each
// document by its key fields. Lines that are not valid JSON or that lack
// the key fields for the table's shape are skipped. The file's read cache
// is purged so loaded documents are immediately visible.
func (s *Store) LoadTable(name, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.ErrClosed
	}
	typ, err := s.resolveTable(name)
	if err != nil {
		return err
	}
	records, err := readJSONL(path)
	if err != nil {
		return err
	}
	h, err := s.pool.Acquire(s.tablePath(name))
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	defer h.Release()
	col, err := h.Engine().Collection(name)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	// Loaded documents enter through the engine, not the table layer;
	// cached reads for this file are stale from the first upsert.
	defer s.purgeCache(s.tablePath(name))

	loaded, skipped := 0, 0
	for _, rec := range records {
		var doc engine.Document
		if err := json.Unmarshal(rec, &doc); err != nil {
			skipped++
			continue
		}
		pred, ok := loadPredicate(typ, doc)
		if !ok {
			skipped++
			continue
		}
		if err := col.Upsert(doc, pred); err != nil {
			return fmt.Errorf("loading into %s: %w", name, err)
		}
		loaded++
	}
	s.logger.Debug("table loaded",
		zap.String("table", name), zap.Int("documents", loaded), zap.Int("skipped", skipped))
	return nil
}

// loadPredicate builds the identity predicate for a dumped document.
func loadPredicate(typ store.TableType, doc engine.Document) (engine.Predicate, bool) {
	switch typ {
	case store.TypeKKV:
		pkey, ok1 := doc[fieldKey1].(string)
		skey, ok2 := doc[fieldKey2].(string)
		if !ok1 || !ok2 {
			return nil, false
		}
		return engine.Predicate{fieldKey1: pkey, fieldKey2: skey}, true
	default:
		key, ok := doc[fieldKey].(string)
		if !ok {
			return nil, false
		}
		return engine.Predicate{fieldKey: key}, true
	}
}

// readJSONL returns each non-empty, parseable line of a JSONL file.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL writes records one per line through a temp file in the target
// directory, fsyncs, then renames over path.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dump-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

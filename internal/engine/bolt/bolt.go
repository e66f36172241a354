// Package bolt implements the document engine over a single bbolt file.
// Each collection is one bucket; documents are stored JSON-encoded under
// big-endian sequence keys and predicates are matched in Go during bucket
// scans.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/mesh-intelligence/larder/internal/engine"
)

// FileExt is the backing-file extension for this engine.
const FileExt = ".bolt"

var _ engine.Engine = (*Engine)(nil)
var _ engine.Collection = (*Collection)(nil)

// Engine is one open bbolt file.
type Engine struct {
	mu     sync.Mutex
	db     *bolt.DB
	closed bool
}

// Open opens or creates the bbolt file at path.
func Open(path string) (engine.Engine, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt %q: %w", path, err)
	}
	return &Engine{db: db}, nil
}

// Collection returns the named document set, creating its bucket on first
// use.
func (e *Engine) Collection(name string) (engine.Collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrEngineClosed
	}
	err := e.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return &Collection{db: e.db, bucket: []byte(name)}, nil
}

// Close releases the file handle. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.db.Close()
}

// Collection is one bucket inside an Engine's file.
type Collection struct {
	db     *bolt.DB
	bucket []byte
}

// Upsert replaces the single document matching pred in place, or appends
// doc under the next sequence key if nothing matches.
func (c *Collection) Upsert(doc engine.Document, pred engine.Predicate) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return fmt.Errorf("collection %s missing", c.bucket)
		}
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			d, err := decode(v)
			if err != nil {
				return err
			}
			if pred.Matches(d) {
				return b.Put(append([]byte(nil), k...), body)
			}
		}
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating document key: %w", err)
		}
		return b.Put(seqKey(seq), body)
	})
}

// Get returns the first document matching pred.
func (c *Collection) Get(pred engine.Predicate) (engine.Document, bool, error) {
	var found engine.Document
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			d, err := decode(v)
			if err != nil {
				return err
			}
			if pred.Matches(d) {
				found = d
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("querying document: %w", err)
	}
	return found, found != nil, nil
}

// Remove deletes every document matching pred and reports the count.
func (c *Collection) Remove(pred engine.Predicate) (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			d, err := decode(v)
			if err != nil {
				return err
			}
			if pred.Matches(d) {
				keys = append(keys, append([]byte(nil), k...))
			}
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("removing documents: %w", err)
	}
	return removed, nil
}

// All returns every document in the collection.
func (c *Collection) All() ([]engine.Document, error) {
	return c.Search(nil)
}

// Search returns every document matching pred.
func (c *Collection) Search(pred engine.Predicate) ([]engine.Document, error) {
	var docs []engine.Document
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			d, err := decode(v)
			if err != nil {
				return err
			}
			if pred.Matches(d) {
				docs = append(docs, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	return docs, nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func decode(v []byte) (engine.Document, error) {
	var doc engine.Document
	if err := json.Unmarshal(v, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

// Package engine defines the document engine boundary: the only interface
// the table layer depends on for durable storage. An Engine owns one on-disk
// file and exposes named collections of flat documents matched by
// exact-field predicates. Implementations live in the sqlite and bolt
// subpackages; the refcounted Pool in this package shares one open Engine
// per file path.
package engine

import "errors"

// Document is a flat mapping of field names to values. The table layer
// writes documents shaped as {key, value}, {key1, key2, value}, or the
// registry's TableInfo fields.
type Document map[string]any

// Predicate is a conjunction of exact field matches. Values must be scalar
// (strings in every predicate the table layer builds).
type Predicate map[string]any

// Matches reports whether doc satisfies every condition in p. An empty
// predicate matches everything.
func (p Predicate) Matches(doc Document) bool {
	for field, want := range p {
		got, ok := doc[field]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Collection is one named document set inside an engine file.
//
// Thread-safety: implementations must be safe for concurrent use by
// multiple goroutines.
type Collection interface {
	// Upsert replaces the single document matching pred with doc, or
	// inserts doc if nothing matches.
	Upsert(doc Document, pred Predicate) error

	// Get returns the first document matching pred. The boolean reports
	// whether a match was found; absence is not an error.
	Get(pred Predicate) (Document, bool, error)

	// Remove deletes every document matching pred and returns how many
	// were removed.
	Remove(pred Predicate) (int, error)

	// All returns every document in the collection, in no particular
	// order.
	All() ([]Document, error)

	// Search returns every document matching pred.
	Search(pred Predicate) ([]Document, error)
}

// Engine is one open backing file.
type Engine interface {
	// Collection returns the named document set, creating it on first
	// use.
	Collection(name string) (Collection, error)

	// Close releases the underlying file handle. Operations on
	// collections of a closed engine fail.
	Close() error
}

// Opener opens the engine for a backing file path, creating the file if it
// does not exist.
type Opener func(path string) (Engine, error)

// ErrEngineClosed is returned by engine operations after Close.
var ErrEngineClosed = errors.New("engine is closed")

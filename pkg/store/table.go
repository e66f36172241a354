package store

import "errors"

// Table is the contract shared by both table shapes. Callers holding a Table
// from Database.GetTable type-assert to KVTable or KKVTable, or use the typed
// Database.KV / Database.KKV accessors instead.
type Table interface {
	// Name returns the table name as registered.
	Name() string

	// Type returns the table shape, fixed at creation.
	Type() TableType

	// Features reports the capabilities of this table. The document engine
	// offers no atomic multi-write guarantee, so FeatureTransactions is
	// never set; callers needing atomicity must branch on this rather than
	// trust the transaction verbs below.
	Features() Feature

	// Begin, Commit, and Rollback exist for compatibility with callers
	// written against a transactional contract. They never fail and they
	// do nothing; each invocation logs a warning so the missing guarantee
	// is observable.
	Begin() error
	Commit() error
	Rollback() error

	// Close releases this table's reference on the shared engine
	// connection. The connection itself stays open until the last
	// referencing table releases it or the Database closes.
	Close() error
}

// KVTable stores one document per key.
type KVTable interface {
	Table

	// Set validates key and value, then inserts or replaces the document
	// for key. CreatedAt is preserved from the first write; UpdatedAt is
	// refreshed on every write. The written value refreshes the read
	// cache.
	Set(key string, value Value) error

	// Get returns the value for key. A cache entry younger than the TTL is
	// returned without consulting the engine. An absent key returns
	// (zero, false, nil): absence is not an error and is never cached.
	Get(key string) (Value, bool, error)

	// Delete evicts the key from the cache and removes its document.
	// The bool reports whether a document was actually removed.
	Delete(key string) (bool, error)

	// Keys returns every key in the backing store. The cache is never
	// consulted: it holds a subset and cannot answer enumeration.
	Keys() ([]string, error)

	// All returns the full key-to-value mapping from the backing store.
	All() (map[string]Value, error)
}

// KKVTable stores one document per (primary key, secondary key) pair.
// It has no read cache.
type KKVTable interface {
	Table

	// Set validates both keys and the value, then inserts or replaces the
	// document for the exact (pkey, skey) pair.
	Set(pkey, skey string, value Value) error

	// Get returns the value for the exact (pkey, skey) pair.
	// An absent pair returns (zero, false, nil).
	Get(pkey, skey string) (Value, bool, error)

	// Delete removes the document for the exact (pkey, skey) pair.
	// The bool reports whether a document was actually removed.
	Delete(pkey, skey string) (bool, error)

	// PrimaryKeys returns the distinct primary keys across all documents.
	// Order is not significant.
	PrimaryKeys() ([]string, error)

	// SecondaryKeys returns every secondary key stored under pkey.
	SecondaryKeys(pkey string) ([]string, error)

	// All returns the nested pkey-to-skey-to-value mapping.
	All() (map[string]map[string]Value, error)
}

// Data operation errors.
var (
	ErrInvalidKey   = errors.New("key must be a non-empty string")
	ErrInvalidValue = errors.New("value data must be a mapping")
)

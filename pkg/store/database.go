package store

import "errors"

// Database is the table registry: the single source of truth for which tables
// exist, of what type, and where their backing files live. It is the only
// component that creates or destroys table files. Registry operations touch
// table metadata only, never table data.
type Database interface {
	// CreateKVTable registers a new single-key table and creates its empty
	// backing file. Returns ErrInvalidTableName if the name fails the syntax
	// rule and ErrTableExists if the name is already registered.
	CreateKVTable(name string) error

	// CreateKKVTable registers a new composite-key table and creates its
	// empty backing file. Same error contract as CreateKVTable.
	CreateKKVTable(name string) error

	// GetTable returns a freshly constructed table bound to the named
	// table's backing file. Returns ErrTableNotFound if the name is not
	// registered or the backing file is missing. Instances from repeated
	// calls share one underlying engine connection per file.
	GetTable(name string) (Table, error)

	// KV returns the named table as a KVTable.
	// Returns ErrWrongTableType if the table is registered as KKV.
	KV(name string) (KVTable, error)

	// KKV returns the named table as a KKVTable.
	// Returns ErrWrongTableType if the table is registered as KV.
	KKV(name string) (KKVTable, error)

	// ListTables returns the full name-to-type mapping. An empty registry
	// yields an empty map, not an error.
	ListTables() (map[string]TableType, error)

	// DropTable removes the table's metadata entry, closes its pooled
	// engine connection, and deletes its backing file. A missing backing
	// file is tolerated. Returns ErrTableNotFound if the name is not
	// registered.
	DropTable(name string) error

	// DumpTable writes every document of the named table to path as JSON
	// Lines, one document per line, replacing path atomically.
	DumpTable(name, path string) error

	// LoadTable upserts JSON Lines records from path into the named
	// table, keyed by each document's key fields. Malformed lines are
	// skipped. The table's read cache is purged, so loaded documents are
	// visible to reads immediately.
	LoadTable(name, path string) error

	// Close releases every pooled engine connection. Operations after
	// Close return ErrClosed. Close is idempotent.
	Close() error
}

// Registry and lifecycle errors.
var (
	ErrInvalidTableName = errors.New("invalid table name")
	ErrTableExists      = errors.New("table already exists")
	ErrTableNotFound    = errors.New("table not found")
	ErrWrongTableType   = errors.New("table has a different type")
	ErrConnection       = errors.New("document engine connection failed")
	ErrClosed           = errors.New("store is closed")
)

// Package sqlite implements the document engine over a single SQLite file
// using the modernc.org driver. Each collection is one SQL table of JSON
// document rows; predicates compile to json_extract comparisons so matching
// runs inside SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/larder/internal/engine"
)

// FileExt is the backing-file extension for this engine.
const FileExt = ".db"

var _ engine.Engine = (*Engine)(nil)

// collectionNameRE admits registry-validated table names plus reserved names
// with a leading underscore. Names are embedded in SQL identifiers, so
// nothing outside this alphabet is accepted.
var collectionNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine is one open SQLite file.
type Engine struct {
	mu     sync.Mutex
	db     *sql.DB
	cols   map[string]*Collection
	closed bool
}

// Open opens or creates the SQLite file at path.
func Open(path string) (engine.Engine, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// sql.Open defers real work; ping now so a bad path fails here rather
	// than on the first data operation.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection per file: SQLite allows a single writer at a time and
	// this keeps concurrent callers queued instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	return &Engine{db: db, cols: make(map[string]*Collection)}, nil
}

// Collection returns the named document set, creating its table on first
// use.
func (e *Engine) Collection(name string) (engine.Collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrEngineClosed
	}
	if c, ok := e.cols[name]; ok {
		return c, nil
	}
	if !collectionNameRE.MatchString(name) {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}

	table := "doc_" + name
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT NOT NULL)",
		table,
	)
	if _, err := e.db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}

	c := &Collection{db: e.db, table: table}
	e.cols[name] = c
	return c, nil
}

// Close releases the database handle. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.db.Close()
}

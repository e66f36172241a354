// This file implements the table registry: a store.Database over a base
// directory holding one engine file per table plus one reserved metadata
// file. The registry owns the engine pool and serializes its own mutations;
// it touches table metadata only, never table data.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/internal/engine/bolt"
	"github.com/mesh-intelligence/larder/internal/engine/sqlite"
	"github.com/mesh-intelligence/larder/pkg/store"
)

var _ store.Database = (*Store)(nil)

// metaFileName is the registry's reserved file. Its leading dot keeps it out
// of the user table namespace, which requires a leading letter.
const metaFileName = ".table_info"

// Store is the concrete registry over one data directory.
type Store struct {
	mu     sync.RWMutex
	closed bool

	cfg    store.Config
	ext    string
	pool   *engine.Pool
	caches *xsync.MapOf[string, *readCache]
	logger *zap.Logger

	metaHandle *engine.Handle
	meta       engine.Collection
}

// Open validates cfg, creates the data directory if needed, and opens the
// registry metadata file. Logging goes to the zap global logger.
func Open(cfg store.Config) (*Store, error) {
	return OpenWithLogger(cfg, zap.L())
}

// OpenWithLogger is Open with an explicit logger.
func OpenWithLogger(cfg store.Config, logger *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = store.DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.L()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", cfg.DataDir, err)
	}

	open, ext := engineFor(cfg.Engine)
	s := &Store{
		cfg:    cfg,
		ext:    ext,
		pool:   engine.NewPool(cfg.Engine, open),
		caches: xsync.NewMapOf[string, *readCache](),
		logger: logger,
	}

	// The metadata connection stays acquired for the store's lifetime so
	// registry operations never pay the open cost twice.
	h, err := s.pool.Acquire(s.metaPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	meta, err := h.Engine().Collection(store.MetaTableName)
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	s.metaHandle = h
	s.meta = meta

	s.logger.Debug("store opened",
		zap.String("engine", cfg.Engine),
		zap.String("data_dir", cfg.DataDir))
	return s, nil
}

// engineFor maps a validated engine name to its opener and file extension.
func engineFor(name string) (engine.Opener, string) {
	switch name {
	case store.EngineBolt:
		return bolt.Open, bolt.FileExt
	default:
		return sqlite.Open, sqlite.FileExt
	}
}

func (s *Store) metaPath() string {
	return filepath.Join(s.cfg.DataDir, metaFileName+s.ext)
}

func (s *Store) tablePath(name string) string {
	return filepath.Join(s.cfg.DataDir, name+s.ext)
}

// Close releases every pooled engine connection. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("store closed", zap.String("data_dir", s.cfg.DataDir))
	return s.pool.Close()
}

// CreateKVTable registers a single-key table.
func (s *Store) CreateKVTable(name string) error {
	return s.createTable(name, store.TypeKV)
}

// CreateKKVTable registers a composite-key table.
func (s *Store) CreateKKVTable(name string) error {
	return s.createTable(name, store.TypeKKV)
}

func (s *Store) createTable(name string, typ store.TableType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if !store.ValidTableName(name) {
		return store.ErrInvalidTableName
	}
	if _, err := s.tableInfo(name); err == nil {
		return store.ErrTableExists
	} else if !errors.Is(err, store.ErrTableNotFound) {
		return err
	}

	logger := s.logger.With(
		zap.String("operation", "create_table"),
		zap.String("table", name),
		zap.String("type", string(typ)))

	// An interrupted drop can leave an orphan file with stale data. Close
	// any pooled connection for the path and truncate the orphan before
	// the table file is created, so old documents cannot resurface.
	path := s.tablePath(name)
	if err := s.pool.Evict(path); err != nil {
		logger.Warn("closing stale connection", zap.Error(err))
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing orphan file %s: %w", path, err)
	}

	// File first, metadata second: interruption between the two leaves an
	// inert orphan, never a registered table without a file.
	h, err := s.pool.Acquire(path)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	h.Release()

	if err := s.addTableInfo(name, typ); err != nil {
		return err
	}
	logger.Debug("table created")
	return nil
}

// GetTable returns a freshly constructed table bound to the named table's
// backing file.
func (s *Store) GetTable(name string) (store.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	typ, err := s.resolveTable(name)
	if err != nil {
		return nil, err
	}
	return s.newTable(name, typ)
}

// KV returns the named table as a KVTable.
func (s *Store) KV(name string) (store.KVTable, error) {
	t, err := s.GetTable(name)
	if err != nil {
		return nil, err
	}
	kv, ok := t.(store.KVTable)
	if !ok {
		t.Close()
		return nil, store.ErrWrongTableType
	}
	return kv, nil
}

// KKV returns the named table as a KKVTable.
func (s *Store) KKV(name string) (store.KKVTable, error) {
	t, err := s.GetTable(name)
	if err != nil {
		return nil, err
	}
	kkv, ok := t.(store.KKVTable)
	if !ok {
		t.Close()
		return nil, store.ErrWrongTableType
	}
	return kkv, nil
}

// ListTables returns the full name-to-type mapping.
func (s *Store) ListTables() (map[string]store.TableType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	docs, err := s.meta.All()
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	tables := make(map[string]store.TableType, len(docs))
	for _, doc := range docs {
		info, err := decodeTableInfo(doc)
		if err != nil {
			s.logger.Warn("skipping malformed table info", zap.Error(err))
			continue
		}
		tables[info.Name] = info.Type
	}
	return tables, nil
}

// DropTable removes the table's metadata, closes its pooled connection, and
// deletes its backing file.
func (s *Store) DropTable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if _, err := s.tableInfo(name); err != nil {
		return err
	}

	logger := s.logger.With(
		zap.String("operation", "drop_table"),
		zap.String("table", name))

	// Metadata first: an interrupted drop is then observed as "not found"
	// with at worst an orphan file, never as a registered table whose file
	// is gone.
	if _, err := s.meta.Remove(engine.Predicate{"name": name}); err != nil {
		return fmt.Errorf("removing table info for %s: %w", name, err)
	}

	path := s.tablePath(name)
	if c, ok := s.caches.LoadAndDelete(path); ok {
		c.clear()
	}
	if err := s.pool.Evict(path); err != nil {
		logger.Warn("closing dropped table connection", zap.Error(err))
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing table file %s: %w", path, err)
	}
	logger.Debug("table dropped")
	return nil
}

// resolveTable returns the registered type for name. Both the metadata
// record and the backing file must exist; a name that fails the syntax rule
// cannot be registered and resolves to not found.
func (s *Store) resolveTable(name string) (store.TableType, error) {
	info, err := s.tableInfo(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(s.tablePath(name)); err != nil {
		if os.IsNotExist(err) {
			return "", store.ErrTableNotFound
		}
		return "", fmt.Errorf("checking table file for %s: %w", name, err)
	}
	return info.Type, nil
}

// newTable constructs a table over a pooled engine connection. KV tables
// share one file-scoped read cache per path.
func (s *Store) newTable(name string, typ store.TableType) (store.Table, error) {
	path := s.tablePath(name)
	h, err := s.pool.Acquire(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	col, err := h.Engine().Collection(name)
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	base := tableBase{
		name:   name,
		typ:    typ,
		handle: h,
		col:    col,
		logger: s.logger.With(zap.String("table", name)),
	}
	if typ == store.TypeKKV {
		return &kkvTable{tableBase: base}, nil
	}
	cache, _ := s.caches.LoadOrCompute(path, func() *readCache {
		return newReadCache(name, s.cfg.CacheTTL)
	})
	return &kvTable{tableBase: base, cache: cache}, nil
}

// purgeCache empties the shared read cache for path, if one exists. Table
// instances keep their cache reference from construction, so invalidation
// must reach the cache object itself, not just the index entry.
func (s *Store) purgeCache(path string) {
	if c, ok := s.caches.Load(path); ok {
		c.clear()
	}
}

// tableInfo returns the metadata record for name.
func (s *Store) tableInfo(name string) (store.TableInfo, error) {
	doc, found, err := s.meta.Get(engine.Predicate{"name": name})
	if err != nil {
		return store.TableInfo{}, fmt.Errorf("reading table info for %s: %w", name, err)
	}
	if !found {
		return store.TableInfo{}, store.ErrTableNotFound
	}
	return decodeTableInfo(doc)
}

// addTableInfo upserts the metadata record for name. ID and CreatedAt
// survive re-upserts; UpdatedAt is refreshed.
func (s *Store) addTableInfo(name string, typ store.TableType) error {
	now := time.Now().UTC()
	info := store.TableInfo{
		ID:        newTableID(),
		Name:      name,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.tableInfo(name); err == nil {
		info.ID = existing.ID
		info.CreatedAt = existing.CreatedAt
	}
	if err := s.meta.Upsert(encodeTableInfo(info), engine.Predicate{"name": name}); err != nil {
		return fmt.Errorf("recording table info for %s: %w", name, err)
	}
	return nil
}

// newTableID returns a UUID v7 string, falling back to v4 if the clock is
// unavailable.
func newTableID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

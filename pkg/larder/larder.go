// Package larder provides the public entry point for opening a Database
// over a data directory, keeping the registry implementation internal.
package larder

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/registry"
	"github.com/mesh-intelligence/larder/pkg/store"
)

// Version is the released larder version, printed by the CLI.
const Version = "v0.1.0"

// Open returns a Database over the data directory described by cfg.
// Logging goes to the zap global logger.
//
// Example:
//
//	db, err := larder.Open(store.DefaultConfig(".larder"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.CreateKVTable("orders"); err != nil {
//	    return err
//	}
func Open(cfg store.Config) (store.Database, error) {
	return registry.Open(cfg)
}

// OpenWithLogger is Open with an explicit logger.
func OpenWithLogger(cfg store.Config, logger *zap.Logger) (store.Database, error) {
	return registry.OpenWithLogger(cfg, logger)
}

// Shared helpers for larder CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/store"
)

// newLogger builds the CLI logger: development output at debug level when
// --verbose is set, production output at warn level otherwise.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openStore resolves the data directory and engine, opens the registry, and
// returns it. The caller must defer db.Close().
func openStore() (store.Database, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := store.Config{
		Engine:  resolveEngine(),
		DataDir: dataDir,
	}
	if configCacheTTL != "" {
		ttl, err := time.ParseDuration(configCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("parse cache_ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	db, err := larder.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

// resolveEngine returns the engine name following the precedence:
// --engine flag > config.yaml engine > default.
func resolveEngine() string {
	if flagEngine != "" {
		return flagEngine
	}
	if configEngine != "" {
		return configEngine
	}
	return defaultEngine
}

// isUserError reports whether err is caused by bad input rather than a
// storage failure, so commands can pick the right exit code.
func isUserError(err error) bool {
	for _, sentinel := range []error{
		store.ErrInvalidTableName,
		store.ErrTableExists,
		store.ErrTableNotFound,
		store.ErrWrongTableType,
		store.ErrInvalidKey,
		store.ErrInvalidValue,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// exitCode maps err to the CLI exit code.
func exitCode(err error) int {
	if isUserError(err) {
		return exitUserError
	}
	return exitSysError
}

// parseDataJSON parses a command-line argument as a JSON object.
func parseDataJSON(arg string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(arg), &data); err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %w", err)
	}
	return data, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

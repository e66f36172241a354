package store

import (
	"errors"
	"time"
)

// Config holds engine selection and parameters for opening a Database.
type Config struct {
	Engine   string        `json:"engine" yaml:"engine" mapstructure:"engine"`
	DataDir  string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Supported document engine names.
const (
	EngineSQLite = "sqlite"
	EngineBolt   = "bolt"
)

// DefaultCacheTTL bounds the staleness of the KV read cache.
const DefaultCacheTTL = 300 * time.Second

// Config validation errors.
var (
	ErrEngineEmpty     = errors.New("engine must not be empty")
	ErrEngineUnknown   = errors.New("unknown engine")
	ErrDataDirEmpty    = errors.New("data dir must not be empty")
	ErrCacheTTLInvalid = errors.New("cache ttl must not be negative")
)

// knownEngines lists the engines that Validate accepts.
var knownEngines = map[string]bool{
	EngineSQLite: true,
	EngineBolt:   true,
}

// DefaultConfig returns a Config for the given data directory with the
// default engine and cache TTL.
func DefaultConfig(dataDir string) Config {
	return Config{
		Engine:   EngineSQLite,
		DataDir:  dataDir,
		CacheTTL: DefaultCacheTTL,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure. A zero CacheTTL is valid and means
// "use DefaultCacheTTL".
func (c Config) Validate() error {
	if c.Engine == "" {
		return ErrEngineEmpty
	}
	if !knownEngines[c.Engine] {
		return ErrEngineUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.CacheTTL < 0 {
		return ErrCacheTTLInvalid
	}
	return nil
}

package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Scan          Scan          `toml:"scan"`
	Analysis      Analysis      `toml:"analysis"`
	Resolver      Resolver      `toml:"resolver"`
	Store         Store         `toml:"store"`
	Observability Observability `toml:"observability"`
	Watch         Watch         `toml:"watch"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

// Scan selects the Java sources that make up the project snapshot.
type Scan struct {
	Roots        []string `toml:"roots"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"` // glob patterns
	IncludeTests bool     `toml:"include_tests"`
}

type Analysis struct {
	Workers        int    `toml:"workers"`
	OverrideFilter string `toml:"override_filter"` // glob over method names, empty matches all
	ResolveUsages  *bool  `toml:"resolve_usages"`
}

type Resolver struct {
	CacheEntries int `toml:"cache_entries"`
}

type Store struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	ProjectKey  string        `toml:"project_key"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
	EnableTracing  bool   `toml:"enable_tracing"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	MaxRunsPerMinute int           `toml:"max_runs_per_minute"`
}

// UsagesEnabled reports whether the call-usage pass runs. Unset means yes.
func (a Analysis) UsagesEnabled() bool {
	if a.ResolveUsages == nil {
		return true
	}
	return *a.ResolveUsages
}

// DefaultConfig returns a validated configuration scanning the current
// directory.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

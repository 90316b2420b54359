package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultCacheEntries = 0 // unbounded
	DefaultStoreFile    = "semresolve.db"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = ".semresolve"
	}

	if len(cfg.Scan.Roots) == 0 {
		cfg.Scan.Roots = []string{"."}
	}
	if cfg.Scan.ExcludeDirs == nil {
		cfg.Scan.ExcludeDirs = []string{".git", "target", "build", "out", "node_modules"}
	}

	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = 1
	}
	if cfg.Resolver.CacheEntries <= 0 {
		cfg.Resolver.CacheEntries = DefaultCacheEntries
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStoreFile
	}
	if cfg.Store.BusyTimeout <= 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRunsPerMinute <= 0 {
		cfg.Watch.MaxRunsPerMinute = 12
	}
}

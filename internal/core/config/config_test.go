// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semresolve.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[scan]
roots = ["src/main/java"]
exclude_dirs = [".git", "generated"]
exclude_files = ["**/*_pb.java"]

[analysis]
workers = 4
override_filter = "on*"
resolve_usages = false

[resolver]
cache_entries = 128

[store]
enabled = true
path = "runs.db"
project_key = "demo"

[watch]
debounce = "1s"
max_runs_per_minute = 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Scan.Roots) != 1 || cfg.Scan.Roots[0] != "src/main/java" {
		t.Errorf("Unexpected roots: %v", cfg.Scan.Roots)
	}
	if len(cfg.Scan.ExcludeDirs) != 2 {
		t.Errorf("Unexpected exclude dirs: %v", cfg.Scan.ExcludeDirs)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.OverrideFilter != "on*" {
		t.Errorf("Expected override filter on*, got %q", cfg.Analysis.OverrideFilter)
	}
	if cfg.Analysis.UsagesEnabled() {
		t.Error("Expected usage pass to be disabled")
	}
	if cfg.Resolver.CacheEntries != 128 {
		t.Errorf("Expected cache entries 128, got %d", cfg.Resolver.CacheEntries)
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "runs.db" || cfg.Store.ProjectKey != "demo" {
		t.Errorf("Unexpected store config: %+v", cfg.Store)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRunsPerMinute != 3 {
		t.Errorf("Expected 3 runs per minute, got %d", cfg.Watch.MaxRunsPerMinute)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Analysis.Workers != 1 {
		t.Errorf("Expected default of 1 worker, got %d", cfg.Analysis.Workers)
	}
	if !cfg.Analysis.UsagesEnabled() {
		t.Error("Expected usage pass enabled by default")
	}
	if cfg.Resolver.CacheEntries != DefaultCacheEntries {
		t.Errorf("Expected %d cache entries, got %d", DefaultCacheEntries, cfg.Resolver.CacheEntries)
	}
	if cfg.Store.Path != DefaultStoreFile {
		t.Errorf("Expected store path %s, got %s", DefaultStoreFile, cfg.Store.Path)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected debounce 500ms, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "version = 3"},
		{"bad filter", "[analysis]\noverride_filter = \"[\""},
		{"bad exclude", "[scan]\nexclude_files = [\"[\"]"},
		{"tracing without endpoint", "[observability]\nenable_tracing = true"},
		{"bad metrics address", "[observability]\nmetrics_address = \"localhost\""},
		{"malformed toml", "[scan\nroots = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SEMRESOLVE_ANALYSIS_WORKERS", "8")
	t.Setenv("SEMRESOLVE_ANALYSIS_RESOLVE_USAGES", "false")
	t.Setenv("SEMRESOLVE_STORE_ENABLED", "true")
	t.Setenv("SEMRESOLVE_STORE_PATH", "/tmp/x.db")
	t.Setenv("SEMRESOLVE_WATCH_DEBOUNCE", "2s")
	t.Setenv("SEMRESOLVE_RESOLVER_CACHE_ENTRIES", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	if cfg.Analysis.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.UsagesEnabled() {
		t.Error("Expected usage pass disabled by env")
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "/tmp/x.db" {
		t.Errorf("Unexpected store config: %+v", cfg.Store)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Resolver.CacheEntries != DefaultCacheEntries {
		t.Errorf("Invalid int override should be ignored, got %d", cfg.Resolver.CacheEntries)
	}
}

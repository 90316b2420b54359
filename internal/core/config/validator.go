package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks every section and joins the failures.
func Validate(cfg *Config) error {
	return errors.Join(
		validateVersion(cfg),
		validateScan(cfg),
		validateAnalysis(cfg),
		validateStore(cfg),
		validateObservability(cfg),
	)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, root := range cfg.Scan.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("scan.roots[%d] must not be empty", i)
		}
	}
	for i, pattern := range cfg.Scan.ExcludeFiles {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scan.exclude_files[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be >= 1, got %d", cfg.Analysis.Workers)
	}
	if f := strings.TrimSpace(cfg.Analysis.OverrideFilter); f != "" {
		if _, err := glob.Compile(f); err != nil {
			return fmt.Errorf("analysis.override_filter %q: %w", f, err)
		}
	}
	if cfg.Resolver.CacheEntries < 0 {
		return fmt.Errorf("resolver.cache_entries must be >= 0, got %d", cfg.Resolver.CacheEntries)
	}
	return nil
}

func validateStore(cfg *Config) error {
	if !cfg.Store.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty when store.enabled=true")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if addr := strings.TrimSpace(cfg.Observability.MetricsAddress); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("observability.metrics_address %q: %w", addr, err)
		}
	}
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when enable_tracing=true")
	}
	return nil
}

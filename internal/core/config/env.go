package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SEMRESOLVE_[SECTION]_[KEY] (e.g., SEMRESOLVE_ANALYSIS_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "SEMRESOLVE_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "SEMRESOLVE_PATHS_STATE_DIR")

	setEnvBool(&cfg.Scan.IncludeTests, "SEMRESOLVE_SCAN_INCLUDE_TESTS")

	// Analysis
	setEnvInt(&cfg.Analysis.Workers, "SEMRESOLVE_ANALYSIS_WORKERS")
	setEnvString(&cfg.Analysis.OverrideFilter, "SEMRESOLVE_ANALYSIS_OVERRIDE_FILTER")
	if val, ok := os.LookupEnv("SEMRESOLVE_ANALYSIS_RESOLVE_USAGES"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			log.Printf("Applying env override: SEMRESOLVE_ANALYSIS_RESOLVE_USAGES=%s", val)
			cfg.Analysis.ResolveUsages = &b
		}
	}
	setEnvInt(&cfg.Resolver.CacheEntries, "SEMRESOLVE_RESOLVER_CACHE_ENTRIES")

	// Store
	setEnvBool(&cfg.Store.Enabled, "SEMRESOLVE_STORE_ENABLED")
	setEnvString(&cfg.Store.Path, "SEMRESOLVE_STORE_PATH")
	setEnvString(&cfg.Store.ProjectKey, "SEMRESOLVE_STORE_PROJECT_KEY")
	setEnvDuration(&cfg.Store.BusyTimeout, "SEMRESOLVE_STORE_BUSY_TIMEOUT")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "SEMRESOLVE_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "SEMRESOLVE_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "SEMRESOLVE_OBSERVABILITY_ENABLE_TRACING")

	setEnvDuration(&cfg.Watch.Debounce, "SEMRESOLVE_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRunsPerMinute, "SEMRESOLVE_WATCH_MAX_RUNS_PER_MINUTE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}

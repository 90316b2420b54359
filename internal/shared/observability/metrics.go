package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "semresolve_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "semresolve_pass_seconds",
		Help:    "Time spent in one resolution pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	HierarchyNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "semresolve_hierarchy_nodes_total",
		Help: "Total number of named types in the type hierarchy.",
	})

	HierarchyEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "semresolve_hierarchy_edges_total",
		Help: "Total number of subtype edges in the type hierarchy.",
	})

	NameCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semresolve_name_cache_lookups_total",
		Help: "Qualified-name step cache lookups by step and outcome.",
	}, []string{"step", "outcome"})

	ItemErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semresolve_item_errors_total",
		Help: "Per-item resolution failures, by pass.",
	}, []string{"pass"})

	OverriddenMethodsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semresolve_overridden_methods_total",
		Help: "Methods found to override an ancestor method.",
	})

	UsagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semresolve_usages_total",
		Help: "Call sites bound to a declared method.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semresolve_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	StoreWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "semresolve_store_write_seconds",
		Help:    "Latency for persisting one analysis run.",
		Buckets: prometheus.DefBuckets,
	})
)

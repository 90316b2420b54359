package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/calls"
	"semresolve/internal/engine/hierarchy"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/override"
	"semresolve/internal/engine/workers"
	"semresolve/internal/shared/observability"
)

// Options configures one analysis of a fixed project snapshot.
type Options struct {
	Workers       int
	CacheEntries  int
	Filter        override.Filter
	ResolveUsages bool
	// Listener receives per-item and per-worker failures. Nil logs them.
	Listener workers.Listener
}

// Analysis is the outcome of the resolution passes. It is returned even
// when a pass was cancelled; Incomplete is then set.
type Analysis struct {
	Model      *Model
	Types      int
	Dropped    int
	Overrides  override.Report
	Usages     calls.Report
	Incomplete bool
}

// Analyze indexes p, builds the type hierarchy and runs the override and
// usage passes. The returned error is the first fatal worker error or the
// context's error; the Analysis holds whatever was computed before it.
func Analyze(ctx context.Context, p *ast.Project, opts Options) (*Analysis, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(
		attribute.Int("files", p.Len()),
		attribute.Int("workers", opts.Workers),
	))
	defer span.End()

	start := time.Now()
	ix := names.BuildIndex(p)
	resolver := names.Synchronize(names.NewResolver(ix, opts.CacheEntries))
	h := hierarchy.Build(ix, resolver)
	observability.PassDuration.WithLabelValues("hierarchy").Observe(time.Since(start).Seconds())
	observability.HierarchyNodes.Set(float64(h.Len()))
	observability.HierarchyEdges.Set(float64(len(h.Edges())))

	model := &Model{
		project:   p,
		index:     ix,
		names:     resolver,
		hierarchy: h,
		overrides: override.New(ix, resolver, h),
		calls:     calls.New(ix, resolver, h),
	}
	out := &Analysis{Model: model, Types: ix.Len(), Dropped: h.Dropped()}

	overrideListener := opts.Listener
	if overrideListener == nil {
		overrideListener = workers.LogListener{Pass: "override"}
	}
	rep, err := model.overrides.Run(ctx, p, opts.Workers, opts.Filter, overrideListener)
	out.Overrides = rep
	if err != nil {
		out.Incomplete = true
		span.RecordError(err)
		return out, err
	}

	if opts.ResolveUsages {
		usageListener := opts.Listener
		if usageListener == nil {
			usageListener = workers.LogListener{Pass: "usages"}
		}
		urep, err := model.calls.Run(ctx, p, opts.Workers, usageListener)
		out.Usages = urep
		if err != nil {
			out.Incomplete = true
			span.RecordError(err)
			return out, err
		}
	}

	stats := resolver.Stats()
	slog.Debug("analysis finished",
		"types", out.Types,
		"hierarchy_nodes", h.Len(),
		"dropped_edges", out.Dropped,
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses,
	)
	return out, nil
}

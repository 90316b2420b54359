// Package app wires scanning, parsing, the resolution passes and the run
// store into the operations exposed by the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"semresolve/internal/core/config"
	"semresolve/internal/data/store"
	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/override"
	"semresolve/internal/engine/parser"
	"semresolve/internal/engine/workers"
	"semresolve/internal/shared/observability"
	"semresolve/internal/shared/util"
)

// FileError is a file that could not be read or parsed. Such files are left
// out of the project; the run continues.
type FileError struct {
	Path string
	Err  error
}

// Result summarises one full run over the configured roots.
type Result struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Files       int
	ParseErrors []FileError
	Analysis    *Analysis
	// Errors holds the first failures reported by the worker pools.
	Errors     []error
	Incomplete bool
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	Parser *parser.Parser
	// Listener, when set, also receives worker pool failures.
	Listener workers.Listener

	store  *store.Store
	filter glob.Glob

	lastMu sync.RWMutex
	last   *Result
}

// New resolves paths against cwd, builds the Java parser and opens the run
// store when enabled.
func New(cfg *config.Config, cwd string) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	a := &App{
		Config: cfg,
		Paths:  paths,
		Parser: parser.NewParser(parser.NewGrammarLoader()),
	}
	if cfg.Analysis.OverrideFilter != "" {
		g, err := glob.Compile(cfg.Analysis.OverrideFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid override filter %q: %w", cfg.Analysis.OverrideFilter, err)
		}
		a.filter = g
	}
	if cfg.Store.Enabled {
		s, err := store.Open(paths.StorePath, cfg.Store.BusyTimeout)
		if err != nil {
			return nil, err
		}
		a.store = s
		slog.Debug("run store opened", "path", s.Path())
	}
	return a, nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Store returns the run store, or nil when persistence is disabled.
func (a *App) Store() *store.Store { return a.store }

// LastResult returns the most recent completed run, if any.
func (a *App) LastResult() (*Result, bool) {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.last, a.last != nil
}

func (a *App) remember(res *Result) {
	a.lastMu.Lock()
	a.last = res
	a.lastMu.Unlock()
}

func (a *App) overrideFilter() override.Filter {
	if a.filter == nil {
		return nil
	}
	g := a.filter
	return func(_ *ast.TypeDecl, m *ast.MethodDecl) bool {
		return g.Match(m.Descriptor.Name)
	}
}

// Run scans the roots, parses every accepted file and analyses the result.
// On cancellation or a fatal worker error the partial Result is returned
// together with the error.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.StringSlice("roots", a.Paths.Roots),
	))
	defer span.End()

	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	files, err := a.ScanDirectories(a.Paths.Roots)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	project, parseErrors, err := a.ParseFiles(ctx, files)
	res.Files = project.Len()
	res.ParseErrors = parseErrors
	if err != nil {
		res.Incomplete = true
		res.Duration = time.Since(res.StartedAt)
		a.remember(res)
		span.RecordError(err)
		return res, err
	}

	collector := newErrorCollector(a.Listener)
	analysis, err := Analyze(ctx, project, Options{
		Workers:       a.Config.Analysis.Workers,
		CacheEntries:  a.Config.Resolver.CacheEntries,
		Filter:        a.overrideFilter(),
		ResolveUsages: a.Config.Analysis.UsagesEnabled(),
		Listener:      collector,
	})
	res.Analysis = analysis
	res.Errors = collector.Errors()
	res.Incomplete = analysis != nil && analysis.Incomplete
	res.Duration = time.Since(res.StartedAt)

	a.remember(res)

	if a.store != nil {
		saveCtx := context.WithoutCancel(ctx)
		if serr := a.store.SaveRun(saveCtx, res.record(a.Config.Store.ProjectKey)); serr != nil {
			slog.Warn("failed to persist run", "run_id", res.RunID, "error", serr)
		}
	}

	slog.Debug("run finished",
		"run_id", res.RunID,
		"files", res.Files,
		"parse_errors", len(res.ParseErrors),
		"duration", res.Duration,
		"heap_mb", util.HeapAllocMB(),
	)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

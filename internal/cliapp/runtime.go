// Package cliapp implements the semresolve command line.
package cliapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	coreapp "semresolve/internal/core/app"
	"semresolve/internal/core/config"
	"semresolve/internal/shared/observability"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	opts := &cliOptions{}
	root := newRootCommand(opts)
	root.SetArgs(args)
	cleanupLogs := func() {}
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		cleanupLogs = configureLogging(cmd.ErrOrStderr(), opts.ui, opts.verbose)
	}
	defer func() { cleanupLogs() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// configureLogging installs the default slog handler. In UI mode logs go to
// a file so they do not corrupt the terminal UI.
func configureLogging(w io.Writer, uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := w
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "semresolve", "semresolve.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "semresolve", "semresolve.log")
	}

	return "semresolve.log"
}

// loadConfig reads the config file. A missing file at the default path
// yields the defaults; environment overrides apply in both cases.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path != defaultConfigPath || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	config.ApplyEnvOverrides(cfg)
	return cfg, nil
}

// applyOptions layers command-line flags and positional roots over cfg.
func applyOptions(opts *cliOptions, cfg *config.Config, roots []string) error {
	if opts.workers < 0 {
		return fmt.Errorf("--workers must be >= 1")
	}
	if opts.workers > 0 {
		cfg.Analysis.Workers = opts.workers
	}
	if opts.noUsages {
		off := false
		cfg.Analysis.ResolveUsages = &off
	}
	if opts.filter != "" {
		cfg.Analysis.OverrideFilter = opts.filter
	}
	if len(roots) > 0 {
		cfg.Scan.Roots = append([]string(nil), roots...)
	}
	return config.Validate(cfg)
}

func newApp(opts *cliOptions, roots []string) (*coreapp.App, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyOptions(opts, cfg, roots); err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if cfg.Paths.ProjectRoot == "" && len(roots) > 0 {
		cfg.Paths.ProjectRoot, _ = filepath.Abs(roots[0])
		cfg.Scan.Roots = absRoots(roots)
	}
	return coreapp.New(cfg, cwd)
}

func absRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			out = append(out, r)
			continue
		}
		out = append(out, abs)
	}
	return out
}

func setupTracing(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Observability.EnableTracing {
		return func() {}
	}
	shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}
}

func runAnalyze(ctx context.Context, w io.Writer, opts *cliOptions, roots []string) error {
	app, err := newApp(opts, roots)
	if err != nil {
		return err
	}
	defer app.Close()
	defer setupTracing(ctx, app.Config)()

	res, err := app.Run(ctx)
	if res != nil {
		printSummary(w, res)
	}
	return err
}

func runWatch(ctx context.Context, w io.Writer, opts *cliOptions, roots []string) error {
	app, err := newApp(opts, roots)
	if err != nil {
		return err
	}
	defer app.Close()
	defer setupTracing(ctx, app.Config)()

	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		server := observability.NewServer(addr, app.Health)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	if opts.ui {
		return runUI(ctx, app)
	}
	return app.Watch(ctx, func(res *coreapp.Result, err error) {
		if res != nil {
			printSummary(w, res)
		}
		if err != nil {
			slog.Error("run failed", "error", err)
		}
	})
}

// analyzeOnce runs the passes for the query subcommands.
func analyzeOnce(ctx context.Context, opts *cliOptions) (*coreapp.App, *coreapp.Analysis, error) {
	app, err := newApp(opts, nil)
	if err != nil {
		return nil, nil, err
	}
	res, err := app.Run(ctx)
	if err != nil {
		_ = app.Close()
		return nil, nil, err
	}
	return app, res.Analysis, nil
}

func runSubtype(ctx context.Context, w io.Writer, opts *cliOptions, ancestor, descendant string) error {
	app, a, err := analyzeOnce(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ok := a.Model.IsSubtypeOrEqual(ancestor, descendant)
	fmt.Fprintf(w, "%s <: %s: %s\n", descendant, ancestor, yesNo(ok))
	return nil
}

func runResolve(ctx context.Context, w io.Writer, opts *cliOptions, name string) error {
	app, a, err := analyzeOnce(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	from, ok := a.Model.ContextOf(opts.from)
	if !ok {
		return fmt.Errorf("unknown type %q", opts.from)
	}
	qt, found := a.Model.ResolveStrict(name, from)
	if !found {
		fmt.Fprintf(w, "%s: not found (lenient: %s)\n", name, a.Model.Resolve(name, from).Name)
		return nil
	}
	if path := qt.Path(); path != "" {
		fmt.Fprintf(w, "%s: %s (%s)\n", name, qt.Name, path)
		return nil
	}
	fmt.Fprintf(w, "%s: %s\n", name, qt.Name)
	return nil
}

func runOverridden(ctx context.Context, w io.Writer, opts *cliOptions, owner, method string) error {
	app, a, err := analyzeOnce(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	refs := a.Model.FindMethods(owner, method)
	if len(refs) == 0 {
		return fmt.Errorf("no method %s in %s", method, owner)
	}
	for _, ref := range refs {
		v, known := a.Model.Overridden(ref.Decl)
		state := yesNo(v)
		if !known {
			state = "not analysed"
		}
		fmt.Fprintf(w, "%s: %s\n", ref.Signature, state)
	}
	return nil
}

func runUsages(ctx context.Context, w io.Writer, opts *cliOptions, owner, method string) error {
	app, a, err := analyzeOnce(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	refs := a.Model.FindMethods(owner, method)
	if len(refs) == 0 {
		return fmt.Errorf("no method %s in %s", method, owner)
	}
	for _, ref := range refs {
		calls := a.Model.Usages(ref.Decl)
		fmt.Fprintf(w, "%s (%d)\n", ref.Signature, len(calls))
		for _, call := range calls {
			path, _ := a.Model.CallPath(call)
			pos := call.Pos()
			fmt.Fprintf(w, "   %s:%d:%d\n", path, pos.Line, pos.Column)
		}
	}
	return nil
}

func runHistory(ctx context.Context, w io.Writer, opts *cliOptions, signature string) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Store.Enabled = true
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	app, err := coreapp.New(cfg, cwd)
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store()
	run, err := st.LatestRun(ctx, cfg.Store.ProjectKey)
	if err != nil {
		return err
	}
	flags, err := st.Overrides(ctx, run.ID)
	if err != nil {
		return err
	}
	if signature == "" {
		printRun(w, run, len(flags))
		return nil
	}

	state := "not recorded"
	if v, ok := flags[signature]; ok {
		state = yesNo(v)
	}
	usages, err := st.Usages(ctx, run.ID, signature)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (run %s)\n", signature, run.ID)
	fmt.Fprintf(w, "  overridden: %s\n", state)
	fmt.Fprintf(w, "  usages:     %d\n", len(usages))
	for _, u := range usages {
		fmt.Fprintf(w, "   %s:%d:%d\n", u.Path, u.Line, u.Column)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

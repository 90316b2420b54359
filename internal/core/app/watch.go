package app

import (
	"context"
	"log/slog"

	"semresolve/internal/core/watcher"
	"semresolve/internal/shared/util"
)

// Watch runs once, then re-runs the full analysis whenever accepted files
// change under the roots, at most Watch.MaxRunsPerMinute times a minute.
// Changes arriving during a run are coalesced into one follow-up run.
// It returns when ctx is done.
func (a *App) Watch(ctx context.Context, onResult func(*Result, error)) error {
	if onResult == nil {
		onResult = func(*Result, error) {}
	}

	trigger := make(chan struct{}, 1)
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:     a.Config.Watch.Debounce,
		ExcludeDirs:  a.Config.Scan.ExcludeDirs,
		ExcludeFiles: a.Config.Scan.ExcludeFiles,
		Extensions:   a.Parser.SupportedExtensions(),
		TestSuffixes: a.Parser.TestFileSuffixes(),
		IncludeTests: a.Config.Scan.IncludeTests,
	}, func(paths []string) {
		slog.Info("source change detected", "files", len(paths))
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.Paths.Roots); err != nil {
		return err
	}

	limiter := util.PerMinute(a.Config.Watch.MaxRunsPerMinute)
	trigger <- struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
		}
		if err := limiter.Wait(ctx, 1); err != nil {
			return nil
		}
		res, err := a.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		onResult(res, err)
	}
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"semresolve/internal/core/config"
)

func TestWatchRerunsOnChange(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, func(c *config.Config) {
		c.Watch.Debounce = 50 * time.Millisecond
		c.Watch.MaxRunsPerMinute = 0
	})

	results := make(chan *Result, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(res *Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	first := waitResult(t, results)
	require.Equal(t, 2, first.Files)

	extra := filepath.Join(root, "src", "p", "Extra.java")
	require.NoError(t, os.WriteFile(extra, []byte("package p;\n\nclass Extra extends Derived {\n}\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.Files == 3 {
				require.True(t, res.Analysis.Model.IsStrictSubtype("p.Base", "p.Extra"))
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			cancel()
			t.Fatal("timed out waiting for re-run")
		}
	}
}

func waitResult(t *testing.T, ch <-chan *Result) *Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run")
		return nil
	}
}

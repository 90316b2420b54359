// # internal/engine/workers/pool.go
package workers

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"semresolve/internal/core/errors"
)

// Listener receives failures from a pool run. Implementations must be safe
// for concurrent use.
type Listener interface {
	// ItemFailed is called when one item fails; the worker moves on.
	ItemFailed(err error)
	// WorkerFailed is called when a worker stops; the pool is cancelled.
	WorkerFailed(err error)
}

// LogListener logs failures through slog.
type LogListener struct {
	Logger *slog.Logger
	Pass   string
}

func (l LogListener) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l LogListener) ItemFailed(err error) {
	l.logger().Warn("resolution item failed", append([]any{"pass", l.Pass}, errorAttrs(err)...)...)
}

func (l LogListener) WorkerFailed(err error) {
	l.logger().Error("resolution worker failed", append([]any{"pass", l.Pass}, errorAttrs(err)...)...)
}

func errorAttrs(err error) []any {
	var de *errors.DomainError
	if errors.As(err, &de) {
		return append(de.LogAttrs(), "error", err)
	}
	return []any{"error", err}
}

// cursor hands out items to workers in order.
type cursor[T any] struct {
	mu    sync.Mutex
	items []T
	next  int
}

func (c *cursor[T]) take() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.items) {
		var zero T
		return zero, false
	}
	item := c.items[c.next]
	c.next++
	return item, true
}

// Run processes items with size workers pulling from a shared cursor. A
// panic or error returned by fn is a worker failure: it is reported, the
// pool context is cancelled and remaining workers stop before their next
// item. Run returns the first worker error, or the parent context's error
// when it was cancelled.
func Run[T any](ctx context.Context, size int, items []T, fn func(context.Context, T) error, l Listener) error {
	if size <= 0 {
		size = 1
	}
	if size > len(items) && len(items) > 0 {
		size = len(items)
	}
	cur := &cursor[T]{items: items}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < size; i++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				item, ok := cur.take()
				if !ok {
					return nil
				}
				if err := call(gctx, fn, item); err != nil {
					l.WorkerFailed(err)
					return err
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func call[T any](ctx context.Context, fn func(context.Context, T) error, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(errors.CodeWorkerFailed, r)
		}
	}()
	return fn(ctx, item)
}

// Guard runs fn, turning a panic into a per-item error carrying the path.
func Guard(path string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(errors.CodeResolutionFailed, r).WithContext(errors.CtxPath, path)
		}
	}()
	fn()
	return nil
}

package app

import (
	"sync"

	"semresolve/internal/engine/workers"
)

const maxKeptErrors = 50

// errorCollector counts failures reported by the worker pools, keeps the
// first few for the run summary and forwards everything to next.
type errorCollector struct {
	next workers.Listener

	mu      sync.Mutex
	items   int
	workers int
	kept    []error
}

func newErrorCollector(next workers.Listener) *errorCollector {
	if next == nil {
		next = workers.LogListener{Pass: "analysis"}
	}
	return &errorCollector{next: next}
}

func (c *errorCollector) ItemFailed(err error) {
	c.mu.Lock()
	c.items++
	c.keep(err)
	c.mu.Unlock()
	c.next.ItemFailed(err)
}

func (c *errorCollector) WorkerFailed(err error) {
	c.mu.Lock()
	c.workers++
	c.keep(err)
	c.mu.Unlock()
	c.next.WorkerFailed(err)
}

func (c *errorCollector) keep(err error) {
	if len(c.kept) < maxKeptErrors {
		c.kept = append(c.kept, err)
	}
}

// Counts returns the number of item and worker failures seen so far.
func (c *errorCollector) Counts() (items, workers int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items, c.workers
}

func (c *errorCollector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.kept...)
}

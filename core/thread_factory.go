package core

import (
	"context"
	"fmt"
	"runtime/pprof"
	"sync/atomic"
)

const defaultNamePrefix = "pool-worker"

// ThreadFactory names and labels worker goroutines.
//
// Names are NamePrefix-N with N counting from 1 per executor. Priority is
// recorded as a pprof label next to the worker name so goroutine and CPU
// profiles can be filtered per pool and per worker.
type ThreadFactory struct {
	NamePrefix string
	Priority   Priority

	seq atomic.Int64
}

// NewThreadFactory creates a factory. An empty prefix becomes "pool-worker".
func NewThreadFactory(prefix string, priority Priority) *ThreadFactory {
	if prefix == "" {
		prefix = defaultNamePrefix
	}
	return &ThreadFactory{NamePrefix: prefix, Priority: priority}
}

// NextName returns the next worker name.
func (f *ThreadFactory) NextName() string {
	prefix := f.NamePrefix
	if prefix == "" {
		prefix = defaultNamePrefix
	}
	// Zero padding keeps lexical order equal to creation order for the
	// first 10^4 workers.
	return fmt.Sprintf("%s-%04d", prefix, f.seq.Add(1))
}

// Go starts fn on a new goroutine carrying the worker's profiling labels.
func (f *ThreadFactory) Go(name string, kind WorkerKind, fn func()) {
	labels := pprof.Labels(
		"worker", name,
		"worker_kind", kind.String(),
		"priority", f.Priority.String(),
	)
	go pprof.Do(context.Background(), labels, func(context.Context) {
		fn()
	})
}

package core

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// worker is one goroutine of an Executor.
//
// Lifecycle: registered by the executor under the main lock, started, then
// runs its optional first task, then loops dequeuing work until it is
// interrupted, (overflow only) idles past the keep-alive, or a task panics.
// On the way out it deregisters itself from the executor.
type worker struct {
	pool      *Executor
	name      string
	kind      WorkerKind
	startedAt time.Time
	completed atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

func newWorker(pool *Executor, name string, kind WorkerKind) *worker {
	return &worker{
		pool:      pool,
		name:      name,
		kind:      kind,
		startedAt: time.Now(),
		stop:      make(chan struct{}),
	}
}

// interrupt unblocks a pending dequeue and makes every later one fail.
func (w *worker) interrupt() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// run is the worker state machine. firstTask, when non-nil, runs before
// the queue is consulted and is never seen again.
func (w *worker) run(firstTask Runnable) {
	reason := ExitInterrupted
	defer func() {
		// A panicking task ends this worker; it is not replaced.
		if r := recover(); r != nil {
			reason = ExitPanic
			w.pool.taskPanicked(w, r, debug.Stack())
		}
		w.pool.workerExited(w, reason)
	}()

	w.pool.workerStarted(w)

	if firstTask != nil {
		w.runTask(firstTask)
	}

	for {
		task, err := w.next()
		if err != nil {
			if errors.Is(err, ErrPollTimeout) {
				reason = ExitIdleTimeout
				w.interrupt()
			}
			return
		}
		w.runTask(task)
	}
}

// next blocks for the next queued task. The worker counts as idle for
// exactly the duration of the call.
func (w *worker) next() (Runnable, error) {
	p := w.pool
	p.idleCount.Add(1)
	defer p.idleCount.Add(-1)

	var (
		task Runnable
		err  error
	)
	if w.kind == WorkerCore {
		task, err = p.queue.Take(w.stop)
	} else {
		task, err = p.queue.Poll(p.keepAlive, w.stop)
	}
	if err != nil {
		return nil, err
	}
	p.metrics.RecordQueueDepth(p.id, p.queue.Len())
	return task, nil
}

func (w *worker) runTask(task Runnable) {
	start := time.Now()
	task.Run()
	w.completed.Add(1)
	w.pool.completedCount.Add(1)
	w.pool.metrics.RecordTaskDuration(w.pool.id, time.Since(start))
}

func (w *worker) info() WorkerInfo {
	return WorkerInfo{
		Name:      w.name,
		Kind:      w.kind,
		Priority:  w.pool.factory.Priority,
		StartedAt: w.startedAt,
		Completed: w.completed.Load(),
	}
}

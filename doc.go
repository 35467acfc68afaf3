// Package threadpool provides a bounded executor that scales eagerly.
//
// Unlike a classic thread pool that only grows once its queue is full, the
// executor adds a worker whenever a task arrives and no worker is idle, up to
// the configured maximum. Core workers live for the life of the pool;
// overflow workers exit after sitting idle for the keep-alive period.
//
// # Quick Start
//
//	pool, err := threadpool.NewExecutor(2, 4, 16, time.Minute)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.ShutdownNow()
//
//	err = pool.Submit(threadpool.TaskFunc(func() {
//		// Your code here
//	}))
//
// # Scaling Policy
//
// On every Submit, under the pool lock:
//
//  1. fewer than core workers: start a core worker that runs the task first
//  2. fewer than max workers and none idle: start an overflow worker that runs the task first
//  3. otherwise enqueue, or fail with *RejectedExecutionError when the queue is full
//
// A freshly started worker runs its first task before it ever looks at the
// queue, so a task that triggered growth can run ahead of tasks already
// waiting.
//
// # Shutdown
//
// ShutdownNow interrupts every worker, closes the queue and returns the tasks
// that never started. Running tasks are not cancelled.
//
// # Panics
//
// A panicking task is reported to the PanicHandler and takes its worker down
// with it. The worker is not replaced right away; the next Submit regrows the
// pool to its core size.
//
// # Configuration
//
// Pools can be described in YAML and built with NewExecutorFromConfig; see
// the config package.
package threadpool

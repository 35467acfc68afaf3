package core

import (
	"fmt"
	"os"
	"time"
)

// =============================================================================
// Submitter: the capability an Executor exposes to callers
// =============================================================================

// Submitter is the narrow executor contract: fire-and-forget submission,
// immediate shutdown and read-only introspection.
type Submitter interface {
	// Submit hands task to the pool. It never blocks on I/O and never runs
	// task on the calling goroutine.
	Submit(task Runnable) error

	// Shutdown is an alias of ShutdownNow.
	Shutdown() []Runnable

	// ShutdownNow stops every worker and returns the queued tasks that never
	// started, in FIFO order.
	ShutdownNow() []Runnable

	IsShutdown() bool
	IsTerminated() bool

	// AwaitTermination returns true without waiting. Poll IsTerminated
	// for blocking shutdown semantics.
	AwaitTermination(timeout time.Duration) bool

	CorePoolSize() int
	MaxPoolSize() int
	CurrentPoolSize() int
	IdleWorkerCount() int
	ActiveWorkerCount() int
}

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// The worker that ran the task exits afterwards and is not replaced.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - poolName: The ID of the executor
	// - workerName: The name of the worker that ran the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(poolName string, workerName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panic information to stderr.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stderr.
func (h *DefaultPanicHandler) HandlePanic(poolName string, workerName string, panicInfo any, stackTrace []byte) {
	fmt.Fprintf(os.Stderr, "[Worker %s @ %s] Panic: %v\nStack trace:\n%s",
		workerName, poolName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting executor metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on worker and submitter goroutines, outside the main
// lock, and should be non-blocking and fast.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the queue depth after an enqueue or dequeue.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records a failed Submit.
	// reason is one of "queue_full", "shutdown".
	RecordTaskRejected(poolName string, reason string)

	// RecordWorkerStarted records a new worker goroutine.
	RecordWorkerStarted(poolName string, kind WorkerKind)

	// RecordWorkerExited records a worker leaving the pool.
	RecordWorkerExited(poolName string, kind WorkerKind, reason ExitReason)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string) {}

// RecordWorkerStarted is a no-op.
func (m *NilMetrics) RecordWorkerStarted(poolName string, kind WorkerKind) {}

// RecordWorkerExited is a no-op.
func (m *NilMetrics) RecordWorkerExited(poolName string, kind WorkerKind, reason ExitReason) {}

package threadpool

import "github.com/Swind/go-thread-pool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the threadpool package for most use cases.

// Runnable is the unit of work accepted by an executor
type Runnable = core.Runnable

// TaskFunc adapts a plain function to Runnable
type TaskFunc = core.TaskFunc

// Executor is the scaling pool
type Executor = core.Executor

// Submitter is the executor contract
type Submitter = core.Submitter

// Option configures an Executor
type Option = core.Option

// ThreadFactory names worker goroutines
type ThreadFactory = core.ThreadFactory

// Priority is the worker priority hint carried by a ThreadFactory
type Priority = core.Priority

// PoolStats is a point-in-time executor snapshot
type PoolStats = core.PoolStats

// RejectedExecutionError is returned when the queue is full
type RejectedExecutionError = core.RejectedExecutionError

// Priority constants
const (
	PriorityBestEffort   Priority = core.PriorityBestEffort
	PriorityUserVisible  Priority = core.PriorityUserVisible
	PriorityUserBlocking Priority = core.PriorityUserBlocking
)

// Errors
var (
	ErrInvalidArgument = core.ErrInvalidArgument
	ErrShutdown        = core.ErrShutdown
	ErrNilTask         = core.ErrNilTask
	ErrRejected        = core.ErrRejected
)

// Options
var (
	WithName          = core.WithName
	WithThreadFactory = core.WithThreadFactory
	WithLogger        = core.WithLogger
	WithMetrics       = core.WithMetrics
	WithPanicHandler  = core.WithPanicHandler
	NewThreadFactory  = core.NewThreadFactory
)

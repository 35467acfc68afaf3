package core

import "time"

// State is the executor lifecycle state. It only moves forward.
type State int32

const (
	StateRunning State = iota
	StateShutdown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerKind distinguishes permanent workers from burst workers.
type WorkerKind int

const (
	// WorkerCore never times out.
	WorkerCore WorkerKind = iota
	// WorkerOverflow exits after the keep-alive elapses without work.
	WorkerOverflow
)

func (k WorkerKind) String() string {
	if k == WorkerCore {
		return "core"
	}
	return "overflow"
}

// ExitReason explains why a worker left the pool.
type ExitReason string

const (
	ExitInterrupted ExitReason = "interrupted"
	ExitIdleTimeout ExitReason = "idle_timeout"
	ExitPanic       ExitReason = "panic"
)

// WorkerInfo is a point-in-time view of one worker.
type WorkerInfo struct {
	Name      string
	Kind      WorkerKind
	Priority  Priority
	StartedAt time.Time
	Completed int64
}

// PoolStats represents runtime observability state for an executor.
type PoolStats struct {
	ID            string
	State         State
	CoreSize      int
	MaxSize       int
	Workers       int
	Idle          int
	Active        int
	Largest       int
	Queued        int
	QueueCapacity int
	Completed     int64
	Rejected      int64
	Panicked      int64
}

// Running reports whether the executor still accepts work.
func (s PoolStats) Running() bool {
	return s.State == StateRunning
}

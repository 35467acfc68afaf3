package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is wrapped by every construction-time validation error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShutdown is returned by Submit once shutdown has begun.
	ErrShutdown = errors.New("executor is shut down")

	// ErrNilTask is returned by Submit for a nil Runnable.
	ErrNilTask = errors.New("task cannot be nil")

	// ErrRejected matches any *RejectedExecutionError via errors.Is.
	ErrRejected = errors.New("task rejected")

	// ErrInterrupted is returned by a blocking dequeue whose stop channel closed.
	ErrInterrupted = errors.New("dequeue interrupted")

	// ErrPollTimeout is returned by Poll when no item arrived in time.
	ErrPollTimeout = errors.New("poll timed out")
)

// RejectedExecutionError is returned when the queue is full and the pool
// cannot grow. Task is the exact value passed to Submit so callers can
// retry it elsewhere.
type RejectedExecutionError struct {
	Task          Runnable
	PoolSize      int
	QueueCapacity int
}

func (e *RejectedExecutionError) Error() string {
	return fmt.Sprintf("task %T rejected: %d workers busy and queue full (capacity %d)",
		e.Task, e.PoolSize, e.QueueCapacity)
}

// Is lets errors.Is(err, ErrRejected) match.
func (e *RejectedExecutionError) Is(target error) bool {
	return target == ErrRejected
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

package core

// Runnable is the unit of work accepted by an Executor.
//
// The executor never copies or inspects a Runnable: the value passed to
// Submit is the value a worker runs, or the value returned by ShutdownNow
// if it never started.
type Runnable interface {
	Run()
}

// TaskFunc adapts a plain function to Runnable.
type TaskFunc func()

// Run implements Runnable.
func (f TaskFunc) Run() {
	f()
}

// isNilTask reports whether r is nil, including a nil TaskFunc stored in
// a non-nil interface.
func isNilTask(r Runnable) bool {
	if r == nil {
		return true
	}
	if f, ok := r.(TaskFunc); ok && f == nil {
		return true
	}
	return false
}

// =============================================================================
// Priority: worker priority hint
// =============================================================================

// Priority is a diagnostic hint attached to worker goroutines.
// The Go scheduler has no thread priorities, so it only shows up in
// profiling labels and stats.
type Priority int

const (
	// PriorityBestEffort: Lowest priority
	PriorityBestEffort Priority = iota

	// PriorityUserVisible: Default priority
	PriorityUserVisible

	// PriorityUserBlocking: Highest priority
	PriorityUserBlocking
)

func (p Priority) String() string {
	switch p {
	case PriorityBestEffort:
		return "best_effort"
	case PriorityUserVisible:
		return "user_visible"
	case PriorityUserBlocking:
		return "user_blocking"
	default:
		return "unknown"
	}
}

// ParsePriority converts the String form back to a Priority.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "best_effort":
		return PriorityBestEffort, true
	case "user_visible", "":
		return PriorityUserVisible, true
	case "user_blocking":
		return PriorityUserBlocking, true
	default:
		return PriorityUserVisible, false
	}
}

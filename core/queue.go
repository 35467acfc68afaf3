package core

import (
	"sync"
	"time"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// waiter is a consumer blocked in Take or Poll.
// ready is buffered so a producer never blocks when signaling it.
type waiter struct {
	ready chan struct{}
}

// WorkQueue is a bounded, blocking FIFO of Runnables.
//
// Producers use the non-blocking Offer. Consumers block in Take (forever)
// or Poll (with a timeout); both unblock early when their stop channel is
// closed. Blocked consumers are woken one per offered item, in arrival order.
type WorkQueue struct {
	mu       sync.Mutex
	items    []Runnable
	capacity int
	waiters  []*waiter
	closed   bool
}

// NewWorkQueue creates a queue holding at most capacity items.
func NewWorkQueue(capacity int) (*WorkQueue, error) {
	if capacity <= 0 {
		return nil, invalidArgument("queueCapacity must be > 0, got %d", capacity)
	}
	initial := defaultQueueCap
	if capacity < initial {
		initial = capacity
	}
	return &WorkQueue{
		items:    make([]Runnable, 0, initial),
		capacity: capacity,
	}, nil
}

// Offer appends r unless the queue is full or closed.
func (q *WorkQueue) Offer(r Runnable) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, r)
	q.wakeOneLocked()
	return true
}

// Take blocks until an item is available or stop is closed.
func (q *WorkQueue) Take(stop <-chan struct{}) (Runnable, error) {
	return q.poll(nil, stop)
}

// Poll is Take bounded by timeout.
func (q *WorkQueue) Poll(timeout time.Duration, stop <-chan struct{}) (Runnable, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return q.poll(timer.C, stop)
}

func (q *WorkQueue) poll(deadline <-chan time.Time, stop <-chan struct{}) (Runnable, error) {
	select {
	case <-stop:
		return nil, ErrInterrupted
	default:
	}

	q.mu.Lock()
	if r, ok := q.popLocked(); ok {
		q.mu.Unlock()
		return r, nil
	}
	w := &waiter{ready: make(chan struct{}, 1)}
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	for {
		select {
		case <-w.ready:
			q.mu.Lock()
			if r, ok := q.popLocked(); ok {
				q.mu.Unlock()
				return r, nil
			}
			// Another consumer took the item on its fast path; wait again.
			q.waiters = append(q.waiters, w)
			q.mu.Unlock()

		case <-deadline:
			q.mu.Lock()
			if !q.removeWaiterLocked(w) {
				// Signaled concurrently with the timeout.
				<-w.ready
				if r, ok := q.popLocked(); ok {
					q.mu.Unlock()
					return r, nil
				}
			}
			q.mu.Unlock()
			return nil, ErrPollTimeout

		case <-stop:
			q.mu.Lock()
			if !q.removeWaiterLocked(w) {
				// We were handed an item we won't take; pass it on.
				<-w.ready
				q.wakeOneLocked()
			}
			q.mu.Unlock()
			return nil, ErrInterrupted
		}
	}
}

// Drain removes and returns every queued item in FIFO order.
func (q *WorkQueue) Drain() []Runnable {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	drained := make([]Runnable, len(q.items))
	copy(drained, q.items)
	q.items = make([]Runnable, 0, defaultQueueCap)
	return drained
}

// Close makes every later Offer fail. Queued items stay until drained.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the configured bound.
func (q *WorkQueue) Capacity() int {
	return q.capacity
}

// RemainingCapacity returns how many more items Offer would accept.
func (q *WorkQueue) RemainingCapacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}
	return q.capacity - len(q.items)
}

// Waiting returns the number of consumers blocked on the queue.
func (q *WorkQueue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

func (q *WorkQueue) popLocked() (Runnable, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = nil
	q.items = q.items[1:]
	q.maybeCompactLocked()
	return r, true
}

func (q *WorkQueue) wakeOneLocked() {
	if len(q.items) == 0 || len(q.waiters) == 0 {
		return
	}
	w := q.waiters[0]
	q.waiters[0] = nil
	q.waiters = q.waiters[1:]
	w.ready <- struct{}{}
}

func (q *WorkQueue) removeWaiterLocked(w *waiter) bool {
	for i, candidate := range q.waiters {
		if candidate == w {
			copy(q.waiters[i:], q.waiters[i+1:])
			q.waiters[len(q.waiters)-1] = nil
			q.waiters = q.waiters[:len(q.waiters)-1]
			return true
		}
	}
	return false
}

func (q *WorkQueue) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]Runnable, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]Runnable, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

package core

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Executor is a bounded goroutine pool with an eager scaling policy.
//
// CorePoolSize workers are started at construction and live until shutdown.
// A submission grows the pool with an overflow worker whenever no worker is
// idle and the pool is below MaxPoolSize, instead of waiting for the queue
// to fill first. Overflow workers exit after KeepAlive without work.
//
// A task that creates a worker runs on it directly, bypassing the queue, so
// execution order across submissions is not strictly FIFO. Queued tasks are
// FIFO among themselves.
type Executor struct {
	id           string
	corePoolSize int
	maxPoolSize  int
	keepAlive    time.Duration

	queue   *WorkQueue
	factory *ThreadFactory

	state atomic.Int32

	// mainLock guards the scaling decision and the worker set.
	mainLock sync.Mutex
	workers  map[string]*worker
	largest  int

	// idleCount is only changed by workers themselves.
	idleCount  atomic.Int32
	totalCount atomic.Int32

	completedCount atomic.Int64
	rejectedCount  atomic.Int64
	panicCount     atomic.Int64

	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
}

var _ Submitter = (*Executor)(nil)

// Option customizes an Executor at construction.
type Option func(*executorOptions)

type executorOptions struct {
	name         string
	factory      *ThreadFactory
	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
}

// WithName sets the executor ID used in logs, metrics and default worker names.
func WithName(name string) Option {
	return func(o *executorOptions) { o.name = name }
}

// WithThreadFactory sets worker naming and the priority label.
func WithThreadFactory(f *ThreadFactory) Option {
	return func(o *executorOptions) { o.factory = f }
}

// WithLogger sets the logger. Defaults to NoOpLogger.
func WithLogger(l Logger) Option {
	return func(o *executorOptions) { o.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to NilMetrics.
func WithMetrics(m Metrics) Option {
	return func(o *executorOptions) { o.metrics = m }
}

// WithPanicHandler sets the handler for panicking tasks. Defaults to DefaultPanicHandler.
func WithPanicHandler(h PanicHandler) Option {
	return func(o *executorOptions) { o.panicHandler = h }
}

// NewExecutor validates the sizing parameters and starts coreSize core workers.
// On error no goroutine has been started.
func NewExecutor(coreSize, maxSize, queueCapacity int, keepAlive time.Duration, opts ...Option) (*Executor, error) {
	if err := ValidateSizing(coreSize, maxSize, queueCapacity, keepAlive); err != nil {
		return nil, err
	}

	var o executorOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	queue, err := NewWorkQueue(queueCapacity)
	if err != nil {
		return nil, err
	}

	id := o.name
	if id == "" {
		id = "pool-" + uuid.NewString()[:8]
	}
	if o.factory == nil {
		o.factory = NewThreadFactory(id, PriorityUserVisible)
	}
	if o.logger == nil {
		o.logger = NewNoOpLogger()
	}
	if o.metrics == nil {
		o.metrics = &NilMetrics{}
	}
	if o.panicHandler == nil {
		o.panicHandler = &DefaultPanicHandler{}
	}

	e := &Executor{
		id:           id,
		corePoolSize: coreSize,
		maxPoolSize:  maxSize,
		keepAlive:    keepAlive,
		queue:        queue,
		factory:      o.factory,
		workers:      make(map[string]*worker, maxSize),
		logger:       o.logger,
		metrics:      o.metrics,
		panicHandler: o.panicHandler,
	}
	e.state.Store(int32(StateRunning))

	e.mainLock.Lock()
	for i := 0; i < coreSize; i++ {
		e.addWorkerLocked(nil, WorkerCore)
	}
	e.mainLock.Unlock()

	e.logger.Info("executor started",
		F("pool", e.id),
		F("core", coreSize),
		F("max", maxSize),
		F("queue_capacity", queueCapacity),
		F("keep_alive", keepAlive),
	)
	return e, nil
}

// ValidateSizing checks the construction parameters of NewExecutor.
func ValidateSizing(coreSize, maxSize, queueCapacity int, keepAlive time.Duration) error {
	switch {
	case coreSize <= 0:
		return invalidArgument("coreSize must be > 0, got %d", coreSize)
	case maxSize <= 0:
		return invalidArgument("maxSize must be > 0, got %d", maxSize)
	case maxSize < coreSize:
		return invalidArgument("maxSize %d < coreSize %d", maxSize, coreSize)
	case queueCapacity <= 0:
		return invalidArgument("queueCapacity must be > 0, got %d", queueCapacity)
	case keepAlive <= 0:
		return invalidArgument("keepAlive must be > 0, got %v", keepAlive)
	}
	return nil
}

// Submit dispatches task to a new core worker, a new overflow worker, or the
// queue, in that order of preference.
//
// Errors: ErrNilTask, ErrShutdown, or a *RejectedExecutionError (matching
// ErrRejected) when the pool is at MaxPoolSize with no idle worker and the
// queue is full.
func (e *Executor) Submit(task Runnable) error {
	if isNilTask(task) {
		return ErrNilTask
	}
	if e.State() != StateRunning {
		e.recordRejected("shutdown")
		return ErrShutdown
	}

	e.mainLock.Lock()
	// Shutdown flips the state before taking the lock, so this recheck keeps
	// a racing Submit from starting workers on a terminated pool.
	if e.State() != StateRunning {
		e.mainLock.Unlock()
		e.recordRejected("shutdown")
		return ErrShutdown
	}

	poolSize := int(e.totalCount.Load())
	idle := int(e.idleCount.Load())

	if poolSize < e.corePoolSize {
		e.addWorkerLocked(task, WorkerCore)
		e.mainLock.Unlock()
		return nil
	}
	if poolSize < e.maxPoolSize && idle == 0 {
		e.addWorkerLocked(task, WorkerOverflow)
		e.mainLock.Unlock()
		return nil
	}

	queued := e.queue.Offer(task)
	e.mainLock.Unlock()

	if !queued {
		if e.State() != StateRunning {
			e.recordRejected("shutdown")
			return ErrShutdown
		}
		e.rejectedCount.Add(1)
		e.metrics.RecordTaskRejected(e.id, "queue_full")
		e.logger.Warn("task rejected",
			F("pool", e.id),
			F("pool_size", poolSize),
			F("queue_capacity", e.queue.Capacity()),
		)
		return &RejectedExecutionError{
			Task:          task,
			PoolSize:      poolSize,
			QueueCapacity: e.queue.Capacity(),
		}
	}

	e.metrics.RecordQueueDepth(e.id, e.queue.Len())
	return nil
}

// Shutdown is an alias of ShutdownNow; there is no graceful variant.
func (e *Executor) Shutdown() []Runnable {
	return e.ShutdownNow()
}

// ShutdownNow interrupts and deregisters every worker, then returns the
// queued tasks that never started, in FIFO order. Running tasks are not
// cancelled. Only the first call does any work; later calls return nil.
func (e *Executor) ShutdownNow() []Runnable {
	if !e.state.CompareAndSwap(int32(StateRunning), int32(StateShutdown)) {
		return nil
	}

	e.mainLock.Lock()
	stopped := 0
	for _, w := range e.sortedWorkersLocked() {
		w.interrupt()
		delete(e.workers, w.name)
		e.totalCount.Add(-1)
		stopped++
	}
	// Close before draining so an Offer racing with shutdown fails instead
	// of stranding its task behind the drain.
	e.queue.Close()
	pending := e.queue.Drain()
	e.state.Store(int32(StateTerminated))
	e.mainLock.Unlock()

	e.metrics.RecordQueueDepth(e.id, 0)
	e.logger.Info("executor terminated",
		F("pool", e.id),
		F("workers_stopped", stopped),
		F("tasks_returned", len(pending)),
	)
	return pending
}

// AwaitTermination returns true immediately without waiting for running
// tasks. Callers that need to block must poll IsTerminated.
func (e *Executor) AwaitTermination(timeout time.Duration) bool {
	return true
}

// IsShutdown reports whether shutdown has begun.
func (e *Executor) IsShutdown() bool {
	return e.State() != StateRunning
}

// IsTerminated reports whether shutdown has completed.
func (e *Executor) IsTerminated() bool {
	return e.State() == StateTerminated
}

// State returns the lifecycle state.
func (e *Executor) State() State {
	return State(e.state.Load())
}

// ID returns the executor name.
func (e *Executor) ID() string { return e.id }

func (e *Executor) CorePoolSize() int            { return e.corePoolSize }
func (e *Executor) MaxPoolSize() int             { return e.maxPoolSize }
func (e *Executor) KeepAlive() time.Duration     { return e.keepAlive }
func (e *Executor) QueueCapacity() int           { return e.queue.Capacity() }
func (e *Executor) QueueSize() int               { return e.queue.Len() }
func (e *Executor) CompletedTaskCount() int64    { return e.completedCount.Load() }
func (e *Executor) RejectedTaskCount() int64     { return e.rejectedCount.Load() }
func (e *Executor) PanickedTaskCount() int64     { return e.panicCount.Load() }
func (e *Executor) CurrentPoolSize() int         { return int(e.totalCount.Load()) }
func (e *Executor) ThreadFactory() *ThreadFactory { return e.factory }

// IdleWorkerCount returns the number of workers blocked waiting for work.
// Workers still unwinding after shutdown are not counted.
func (e *Executor) IdleWorkerCount() int {
	idle := int(e.idleCount.Load())
	if total := e.CurrentPoolSize(); idle > total {
		return total
	}
	return idle
}

// ActiveWorkerCount returns the number of workers that are not idle.
func (e *Executor) ActiveWorkerCount() int {
	active := e.CurrentPoolSize() - e.IdleWorkerCount()
	if active < 0 {
		return 0
	}
	return active
}

// LargestPoolSize returns the highest worker count ever reached.
func (e *Executor) LargestPoolSize() int {
	e.mainLock.Lock()
	defer e.mainLock.Unlock()
	return e.largest
}

// Workers returns the live workers ordered by name.
func (e *Executor) Workers() []WorkerInfo {
	e.mainLock.Lock()
	defer e.mainLock.Unlock()

	sorted := e.sortedWorkersLocked()
	infos := make([]WorkerInfo, len(sorted))
	for i, w := range sorted {
		infos[i] = w.info()
	}
	return infos
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() PoolStats {
	return PoolStats{
		ID:            e.id,
		State:         e.State(),
		CoreSize:      e.corePoolSize,
		MaxSize:       e.maxPoolSize,
		Workers:       e.CurrentPoolSize(),
		Idle:          e.IdleWorkerCount(),
		Active:        e.ActiveWorkerCount(),
		Largest:       e.LargestPoolSize(),
		Queued:        e.queue.Len(),
		QueueCapacity: e.queue.Capacity(),
		Completed:     e.completedCount.Load(),
		Rejected:      e.rejectedCount.Load(),
		Panicked:      e.panicCount.Load(),
	}
}

func (e *Executor) addWorkerLocked(firstTask Runnable, kind WorkerKind) {
	w := newWorker(e, e.factory.NextName(), kind)
	e.workers[w.name] = w
	if n := int(e.totalCount.Add(1)); n > e.largest {
		e.largest = n
	}
	e.factory.Go(w.name, kind, func() { w.run(firstTask) })
}

func (e *Executor) sortedWorkersLocked() []*worker {
	sorted := make([]*worker, 0, len(e.workers))
	for _, w := range e.workers {
		sorted = append(sorted, w)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	return sorted
}

func (e *Executor) workerStarted(w *worker) {
	e.metrics.RecordWorkerStarted(e.id, w.kind)
	e.logger.Debug("worker started", F("pool", e.id), F("worker", w.name), F("kind", w.kind))
}

// workerExited deregisters w unless shutdown already did.
func (e *Executor) workerExited(w *worker, reason ExitReason) {
	e.mainLock.Lock()
	if current, ok := e.workers[w.name]; ok && current == w {
		delete(e.workers, w.name)
		e.totalCount.Add(-1)
	}
	e.mainLock.Unlock()

	e.metrics.RecordWorkerExited(e.id, w.kind, reason)
	e.logger.Debug("worker exited",
		F("pool", e.id),
		F("worker", w.name),
		F("kind", w.kind),
		F("reason", reason),
		F("completed", w.completed.Load()),
	)
}

func (e *Executor) taskPanicked(w *worker, panicInfo any, stack []byte) {
	e.panicCount.Add(1)
	e.metrics.RecordTaskPanic(e.id, panicInfo)
	e.logger.Error("task panicked, worker exiting",
		F("pool", e.id),
		F("worker", w.name),
		F("panic", panicInfo),
	)
	e.panicHandler.HandlePanic(e.id, w.name, panicInfo, stack)
}

func (e *Executor) recordRejected(reason string) {
	e.rejectedCount.Add(1)
	e.metrics.RecordTaskRejected(e.id, reason)
}

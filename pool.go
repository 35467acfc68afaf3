package threadpool

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Swind/go-thread-pool/config"
	"github.com/Swind/go-thread-pool/core"
)

// NewExecutor creates a started executor. See core.NewExecutor.
func NewExecutor(coreSize, maxSize, queueCapacity int, keepAlive time.Duration, opts ...Option) (*Executor, error) {
	return core.NewExecutor(coreSize, maxSize, queueCapacity, keepAlive, opts...)
}

// NewExecutorFromConfig builds an executor from a loaded configuration.
// A DefaultLogger at the configured level is attached before extra options,
// so callers can still override it.
func NewExecutorFromConfig(cfg *config.Config, extra ...Option) (*Executor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := append([]Option{WithLogger(core.NewDefaultLoggerWithLevel(os.Stderr, level))}, extra...)
	return cfg.Pool.NewExecutor(opts...)
}

// =============================================================================
// Global Executor Helper (Singleton)
// =============================================================================

var (
	globalExecutor *Executor
	globalMu       sync.Mutex
)

// InitGlobalExecutor creates the process-wide executor.
// Calling it again before ShutdownGlobalExecutor is a no-op.
func InitGlobalExecutor(coreSize, maxSize, queueCapacity int, keepAlive time.Duration, opts ...Option) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor != nil {
		return nil // Already initialized
	}

	e, err := core.NewExecutor(coreSize, maxSize, queueCapacity, keepAlive, append([]Option{WithName("global-pool")}, opts...)...)
	if err != nil {
		return fmt.Errorf("init global executor: %w", err)
	}
	globalExecutor = e
	return nil
}

// GetGlobalExecutor returns the global executor instance.
// It panics if InitGlobalExecutor has not been called.
func GetGlobalExecutor() *Executor {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor == nil {
		panic("GlobalExecutor not initialized. Call InitGlobalExecutor() first.")
	}
	return globalExecutor
}

// ShutdownGlobalExecutor stops the global executor and returns its queued tasks.
func ShutdownGlobalExecutor() []Runnable {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor == nil {
		return nil
	}
	pending := globalExecutor.ShutdownNow()
	globalExecutor = nil
	return pending
}

// Submit hands task to the global executor.
func Submit(task Runnable) error {
	return GetGlobalExecutor().Submit(task)
}

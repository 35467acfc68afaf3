package core

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Test Metrics
// =============================================================================

type workerExit struct {
	kind   WorkerKind
	reason ExitReason
}

// recordingMetrics is a Metrics implementation that keeps every call.
type recordingMetrics struct {
	mu        sync.Mutex
	duration  int
	panics    []any
	depths    []int
	rejected  map[string]int
	startedBy map[WorkerKind]int
	exited    map[workerExit]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		rejected:  make(map[string]int),
		startedBy: make(map[WorkerKind]int),
		exited:    make(map[workerExit]int),
	}
}

func (m *recordingMetrics) RecordTaskDuration(poolName string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration++
}

func (m *recordingMetrics) RecordTaskPanic(poolName string, panicInfo any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics = append(m.panics, panicInfo)
}

func (m *recordingMetrics) RecordQueueDepth(poolName string, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depths = append(m.depths, depth)
}

func (m *recordingMetrics) RecordTaskRejected(poolName string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) RecordWorkerStarted(poolName string, kind WorkerKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startedBy[kind]++
}

func (m *recordingMetrics) RecordWorkerExited(poolName string, kind WorkerKind, reason ExitReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exited[workerExit{kind, reason}]++
}

func (m *recordingMetrics) durations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *recordingMetrics) rejections(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected[reason]
}

func (m *recordingMetrics) started(kind WorkerKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedBy[kind]
}

func (m *recordingMetrics) exits(kind WorkerKind, reason ExitReason) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited[workerExit{kind, reason}]
}

var _ Metrics = (*recordingMetrics)(nil)
var _ Metrics = (*NilMetrics)(nil)
var _ PanicHandler = (*DefaultPanicHandler)(nil)

// TestMetrics_PanicIsRecorded verifies a panic reaches both sinks
// Given: An executor with recording metrics and panic handler
// When: A task panics with a known value
// Then: Both observe the value and the worker exit reason is panic
func TestMetrics_PanicIsRecorded(t *testing.T) {
	metrics := newRecordingMetrics()
	handler := &recordingPanicHandler{}
	e := newTestExecutor(t, 1, 1, 1, time.Second, WithMetrics(metrics), WithPanicHandler(handler))

	if err := e.Submit(TaskFunc(func() { panic("kaboom") })); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return metrics.exits(WorkerCore, ExitPanic) == 1 })

	metrics.mu.Lock()
	panics := append([]any(nil), metrics.panics...)
	metrics.mu.Unlock()
	if len(panics) != 1 || panics[0] != "kaboom" {
		t.Errorf("recorded panics = %v, want [kaboom]", panics)
	}
	if handler.count() != 1 {
		t.Errorf("panic handler calls = %d, want 1", handler.count())
	}
}

func TestNilMetrics_NoPanic(t *testing.T) {
	m := &NilMetrics{}
	m.RecordTaskDuration("p", time.Second)
	m.RecordTaskPanic("p", "x")
	m.RecordQueueDepth("p", 1)
	m.RecordTaskRejected("p", "queue_full")
	m.RecordWorkerStarted("p", WorkerCore)
	m.RecordWorkerExited("p", WorkerOverflow, ExitIdleTimeout)
}

// =============================================================================
// Test Logger
// =============================================================================

func TestDefaultLogger_LevelFilterAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLoggerWithLevel(&buf, LogLevelInfo)

	l.Debug("hidden")
	l.Info("worker exited", F("worker", "w-0001"), F("reason", ExitIdleTimeout))
	l.Error("boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] worker exited {worker: w-0001, reason: idle_timeout}") {
		t.Errorf("info line missing or malformed: %q", out)
	}
	if !strings.Contains(out, "[ERROR] boom") {
		t.Errorf("error line missing: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("ParseLogLevel(verbose) succeeded, want error")
	}
}

func TestExecutor_LogsLifecycle(t *testing.T) {
	var buf syncBuffer
	logger := NewDefaultLoggerWithLevel(&buf, LogLevelDebug)
	e := newTestExecutor(t, 1, 1, 1, time.Second, WithLogger(logger), WithName("logged"))

	e.ShutdownNow()
	waitFor(t, time.Second, func() bool { return strings.Contains(buf.String(), "worker exited") })

	out := buf.String()
	for _, want := range []string{"executor started", "worker started", "executor terminated", "reason: interrupted"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

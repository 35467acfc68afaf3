package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/Swind/go-thread-pool/config"
	"github.com/Swind/go-thread-pool/core"
)

func init() {
	color.NoColor = true
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), append([]string{"poolsim"}, args...))
	return out.String(), err
}

func newPool(t *testing.T, coreSize, maxSize, queue int) *core.Executor {
	t.Helper()
	pool, err := core.NewExecutor(coreSize, maxSize, queue, time.Second, core.WithName("sim"))
	require.NoError(t, err)
	t.Cleanup(func() { pool.ShutdownNow() })
	return pool
}

func TestSimulate_AllTasksComplete(t *testing.T) {
	pool := newPool(t, 2, 4, 100)

	r := simulate(context.Background(), pool, workload{Tasks: 20, TaskDuration: time.Millisecond})

	assert.Equal(t, "sim", r.Pool)
	assert.Equal(t, 20, r.Submitted)
	assert.Equal(t, 20, r.Accepted)
	assert.Equal(t, 0, r.Rejected)
	assert.Equal(t, 20, r.Completed)
	assert.Equal(t, 0, r.Drained)
	assert.LessOrEqual(t, r.Largest, 4)
	assert.True(t, pool.IsTerminated())
}

func TestSimulate_SaturatedPoolRejects(t *testing.T) {
	pool := newPool(t, 1, 1, 1)

	r := simulate(context.Background(), pool, workload{Tasks: 5, TaskDuration: 200 * time.Millisecond})

	assert.Equal(t, 5, r.Submitted)
	assert.Equal(t, r.Submitted, r.Accepted+r.Rejected)
	assert.GreaterOrEqual(t, r.Rejected, 3)
	assert.Equal(t, r.Accepted, r.Completed)
	assert.Equal(t, 1, r.Largest)
}

func TestSimulate_CancelledContext(t *testing.T) {
	pool := newPool(t, 1, 2, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := simulate(ctx, pool, workload{Tasks: 10, TaskDuration: time.Millisecond})

	assert.Equal(t, 0, r.Submitted)
	assert.True(t, pool.IsTerminated())
}

func TestRunCommand_PrintsReport(t *testing.T) {
	out, err := runApp(t, "run", "--core", "2", "--max", "3", "--queue", "10", "--tasks", "5", "--task-duration", "1ms")
	require.NoError(t, err)

	assert.Contains(t, out, "core=2 max=3 queue=10")
	assert.Contains(t, out, "submitted  5")
	assert.Contains(t, out, "completed  5")
	assert.Contains(t, out, "rejected   0")
}

func TestRunCommand_CoreOverrideRaisesMax(t *testing.T) {
	out, err := runApp(t, "run", "--core", "4", "--tasks", "1", "--task-duration", "1ms")
	require.NoError(t, err)

	assert.Contains(t, out, "core=4 max=4")
}

func TestRunCommand_InvalidSizing(t *testing.T) {
	_, err := runApp(t, "run", "--core", "3", "--max", "1", "--tasks", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestRunCommand_ServesMetrics(t *testing.T) {
	out, err := runApp(t, "run", "--tasks", "3", "--task-duration", "1ms", "--metrics-listen", "127.0.0.1:0")
	require.NoError(t, err)

	assert.Contains(t, out, "metrics served at http://127.0.0.1:")
}

func TestRunCommand_LoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  name: from-file
  core_size: 1
  max_size: 2
  queue_capacity: 7
  keep_alive: 50ms
log:
  level: error
`), 0o600))

	out, err := runApp(t, "run", "--config", path, "--tasks", "2", "--task-duration", "1ms")
	require.NoError(t, err)

	assert.Contains(t, out, "pool from-file (core=1 max=2 queue=7)")
}

func TestConfigCommand_WritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")

	out, err := runApp(t, "config", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestConfigCommand_PrintsEffective(t *testing.T) {
	out, err := runApp(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "core_size: 2")
	assert.Contains(t, out, "keep_alive: 1m0s")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	threadpool "github.com/Swind/go-thread-pool"
	"github.com/Swind/go-thread-pool/config"
	"github.com/Swind/go-thread-pool/core"
	obs "github.com/Swind/go-thread-pool/observability/prometheus"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Submit a burst of tasks and report how the pool scaled",

		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.IntFlag{Name: "core", Usage: "Core pool size (overrides config)"},
			&cli.IntFlag{Name: "max", Usage: "Maximum pool size (overrides config)"},
			&cli.IntFlag{Name: "queue", Usage: "Queue capacity (overrides config)"},
			&cli.DurationFlag{Name: "keep-alive", Usage: "Idle time before overflow workers exit (overrides config)"},
			&cli.IntFlag{Name: "tasks", Aliases: []string{"n"}, Value: 32, Usage: "Number of tasks to submit"},
			&cli.DurationFlag{Name: "task-duration", Value: 20 * time.Millisecond, Usage: "How long each task runs"},
			&cli.DurationFlag{Name: "interval", Usage: "Pause between submissions (0 submits a burst)"},
			&cli.StringFlag{Name: "metrics-listen", Usage: "Serve /metrics on this address (enables metrics)"},
			&cli.DurationFlag{Name: "hold", Usage: "Keep serving metrics this long after the run"},
		},

		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	// 1. Load config and apply flag overrides
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	applyOverrides(c, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	// 2. Wire metrics
	var opts []threadpool.Option
	var poller *obs.SnapshotPoller
	var server *http.Server
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		poller, err = obs.NewSnapshotPoller(cfg.Metrics.Namespace, reg, cfg.Metrics.PollInterval)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		opts = append(opts, threadpool.WithMetrics(exporter))

		server, err = serveMetrics(cfg.Metrics.Listen, reg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	// 3. Build the pool and run the workload
	pool, err := threadpool.NewExecutorFromConfig(cfg, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	if poller != nil {
		poller.AddPool(pool.ID(), pool)
		poller.Start(c.Context)
		defer poller.Stop()
	}

	report := simulate(c.Context, pool, workload{
		Tasks:        c.Int("tasks"),
		TaskDuration: c.Duration("task-duration"),
		Interval:     c.Duration("interval"),
	})

	// 4. Format output
	printReport(c.App.Writer, report)

	if server != nil {
		fmt.Fprintf(c.App.Writer, "metrics served at http://%s/metrics\n", server.Addr)
		if hold := c.Duration("hold"); hold > 0 {
			select {
			case <-time.After(hold):
			case <-c.Context.Done():
			}
		}
	}
	return nil
}

func applyOverrides(c *cli.Context, cfg *config.Config) {
	if c.IsSet("core") {
		cfg.Pool.CoreSize = c.Int("core")
		if !c.IsSet("max") && cfg.Pool.MaxSize < cfg.Pool.CoreSize {
			cfg.Pool.MaxSize = cfg.Pool.CoreSize
		}
	}
	if c.IsSet("max") {
		cfg.Pool.MaxSize = c.Int("max")
	}
	if c.IsSet("queue") {
		cfg.Pool.QueueCapacity = c.Int("queue")
	}
	if c.IsSet("keep-alive") {
		cfg.Pool.KeepAlive = c.Duration("keep-alive")
	}
	if c.IsSet("metrics-listen") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = c.String("metrics-listen")
	}
}

// serveMetrics binds addr before returning so the reported address is real.
func serveMetrics(addr string, reg *prom.Registry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = server.Serve(ln)
	}()
	return server, nil
}

type workload struct {
	Tasks        int
	TaskDuration time.Duration
	Interval     time.Duration
}

type report struct {
	Pool      string
	Core      int
	Max       int
	Queue     int
	Submitted int
	Accepted  int
	Rejected  int
	Completed int
	Drained   int
	Largest   int
	Elapsed   time.Duration
}

// simulate submits w.Tasks tasks, waits for the accepted ones to finish
// (or ctx to end) and shuts the pool down.
func simulate(ctx context.Context, pool *core.Executor, w workload) report {
	r := report{
		Pool:  pool.ID(),
		Core:  pool.CorePoolSize(),
		Max:   pool.MaxPoolSize(),
		Queue: pool.QueueCapacity(),
	}
	if w.Tasks < 0 {
		w.Tasks = 0
	}
	start := time.Now()

	done := make(chan struct{}, w.Tasks)
	task := threadpool.TaskFunc(func() {
		time.Sleep(w.TaskDuration)
		done <- struct{}{}
	})

submit:
	for i := 0; i < w.Tasks; i++ {
		if ctx.Err() != nil {
			break
		}
		r.Submitted++
		err := pool.Submit(task)
		switch {
		case err == nil:
			r.Accepted++
		case errors.Is(err, core.ErrRejected):
			r.Rejected++
		default:
			break submit
		}
		if w.Interval > 0 {
			select {
			case <-time.After(w.Interval):
			case <-ctx.Done():
			}
		}
	}

wait:
	for r.Completed < r.Accepted {
		select {
		case <-done:
			r.Completed++
		case <-ctx.Done():
			break wait
		}
	}

	r.Largest = pool.LargestPoolSize()
	r.Drained = len(pool.ShutdownNow())
	r.Elapsed = time.Since(start)
	return r
}

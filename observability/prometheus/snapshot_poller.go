package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-thread-pool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
// *core.Executor implements it.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports executor Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolWorkers   *prom.GaugeVec
	poolIdle      *prom.GaugeVec
	poolActive    *prom.GaugeVec
	poolLargest   *prom.GaugeVec
	poolQueued    *prom.GaugeVec
	poolCapacity  *prom.GaugeVec
	poolCompleted *prom.GaugeVec
	poolRejected  *prom.GaugeVec
	poolRunning   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "threadpool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"pool"})
	}

	p := &SnapshotPoller{
		interval:      interval,
		pools:         make(map[string]PoolSnapshotProvider),
		poolWorkers:   gauge("pool_workers", "Live workers per pool."),
		poolIdle:      gauge("pool_idle_workers", "Workers blocked waiting for work."),
		poolActive:    gauge("pool_active_workers", "Workers running a task."),
		poolLargest:   gauge("pool_largest_workers", "Largest worker count reached."),
		poolQueued:    gauge("pool_queued", "Queued tasks per pool."),
		poolCapacity:  gauge("pool_queue_capacity", "Queue capacity per pool."),
		poolCompleted: gauge("pool_completed_total", "Completed task count snapshot."),
		poolRejected:  gauge("pool_rejected_total", "Rejected submission count snapshot."),
		poolRunning:   gauge("pool_running", "Pool running state (1=running, 0=shut down)."),
	}

	for _, g := range []**prom.GaugeVec{
		&p.poolWorkers, &p.poolIdle, &p.poolActive, &p.poolLargest, &p.poolQueued,
		&p.poolCapacity, &p.poolCompleted, &p.poolRejected, &p.poolRunning,
	} {
		registered, err := registerCollector(reg, *g)
		if err != nil {
			return nil, err
		}
		*g = registered
	}

	return p, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// RemovePool stops exporting the named pool and deletes its series.
func (p *SnapshotPoller) RemovePool(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	delete(p.pools, name)
	p.poolsMu.Unlock()

	for _, g := range p.gauges() {
		g.DeleteLabelValues(name)
	}
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolIdle.WithLabelValues(name).Set(float64(stats.Idle))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolLargest.WithLabelValues(name).Set(float64(stats.Largest))
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolCapacity.WithLabelValues(name).Set(float64(stats.QueueCapacity))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		if stats.Running() {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
}

func (p *SnapshotPoller) gauges() []*prom.GaugeVec {
	return []*prom.GaugeVec{
		p.poolWorkers, p.poolIdle, p.poolActive, p.poolLargest, p.poolQueued,
		p.poolCapacity, p.poolCompleted, p.poolRejected, p.poolRunning,
	}
}

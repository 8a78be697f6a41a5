package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Swind/go-region-runner/sim"
)

// SnapshotPoller periodically exports simulated-host stats snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	sourcesMu sync.RWMutex
	sources   map[string]sim.StatsSource

	threadTick     *prom.GaugeVec
	threadPending  *prom.GaugeVec
	threadExecuted *prom.GaugeVec
	threadPanics   *prom.GaugeVec
	threadRunning  *prom.GaugeVec

	poolQueued   *prom.GaugeVec
	poolActive   *prom.GaugeVec
	poolDelayed  *prom.GaugeVec
	poolWorkers  *prom.GaugeVec
	poolExecuted *prom.GaugeVec
	poolRunning  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	threadGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{Namespace: namespace, Name: name, Help: help}, []string{"server", "thread"})
	}
	poolGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{Namespace: namespace, Name: name, Help: help}, []string{"server", "pool"})
	}

	p := &SnapshotPoller{
		interval:       interval,
		sources:        make(map[string]sim.StatsSource),
		threadTick:     threadGauge("thread_tick", "Current tick per tick thread."),
		threadPending:  threadGauge("thread_pending", "Scheduled tasks per tick thread."),
		threadExecuted: threadGauge("thread_executed_total", "Executed task count snapshot per tick thread."),
		threadPanics:   threadGauge("thread_panics_total", "Recovered panic count snapshot per tick thread."),
		threadRunning:  threadGauge("thread_running", "Tick thread state (1=running, 0=stopped)."),
		poolQueued:     poolGauge("pool_queued", "Queued tasks per pool."),
		poolActive:     poolGauge("pool_active", "Active tasks per pool."),
		poolDelayed:    poolGauge("pool_delayed", "Delayed tasks per pool."),
		poolWorkers:    poolGauge("pool_workers", "Worker count per pool."),
		poolExecuted:   poolGauge("pool_executed_total", "Executed task count snapshot per pool."),
		poolRunning:    poolGauge("pool_running", "Pool running state (1=running, 0=stopped)."),
	}

	for _, g := range []**prom.GaugeVec{
		&p.threadTick, &p.threadPending, &p.threadExecuted, &p.threadPanics, &p.threadRunning,
		&p.poolQueued, &p.poolActive, &p.poolDelayed, &p.poolWorkers, &p.poolExecuted, &p.poolRunning,
	} {
		registered, err := registerCollector(reg, *g)
		if err != nil {
			return nil, err
		}
		*g = registered
	}
	return p, nil
}

// AddServer adds or replaces a stats source by name.
func (p *SnapshotPoller) AddServer(name string, source sim.StatsSource) {
	if p == nil || source == nil {
		return
	}
	name = normalizeLabel(name, "server")
	p.sourcesMu.Lock()
	p.sources[name] = source
	p.sourcesMu.Unlock()
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
	p.sourcesMu.RLock()
	defer p.sourcesMu.RUnlock()

	for server, source := range p.sources {
		for _, ts := range source.ThreadStats() {
			thread := normalizeLabel(ts.Name, "unknown")
			p.threadTick.WithLabelValues(server, thread).Set(float64(ts.Tick))
			p.threadPending.WithLabelValues(server, thread).Set(float64(ts.Pending))
			p.threadExecuted.WithLabelValues(server, thread).Set(float64(ts.Executed))
			p.threadPanics.WithLabelValues(server, thread).Set(float64(ts.Panics))
			p.threadRunning.WithLabelValues(server, thread).Set(boolGauge(ts.Running))
		}

		ps := source.PoolStats()
		pool := normalizeLabel(ps.ID, "async")
		p.poolQueued.WithLabelValues(server, pool).Set(float64(ps.Queued))
		p.poolActive.WithLabelValues(server, pool).Set(float64(ps.Active))
		p.poolDelayed.WithLabelValues(server, pool).Set(float64(ps.Delayed))
		p.poolWorkers.WithLabelValues(server, pool).Set(float64(ps.Workers))
		p.poolExecuted.WithLabelValues(server, pool).Set(float64(ps.Executed))
		p.poolRunning.WithLabelValues(server, pool).Set(boolGauge(ps.Running))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

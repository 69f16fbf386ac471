package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/go-dispatch/dispatch/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// StatsProvider provides current dispatcher stats snapshots. The core
// Dispatcher implements it.
type StatsProvider interface {
	Stats() core.DispatcherStats
	WorkerStats() []core.WorkerStats
}

// SnapshotPoller periodically exports dispatcher Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]StatsProvider

	poolWorkers  *prom.GaugeVec
	poolQueued   *prom.GaugeVec
	poolDelayed  *prom.GaugeVec
	workerQueued *prom.GaugeVec
	workerDone   *prom.GaugeVec
	workerStolen *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "pool_workers",
		Help:      "Stealable worker count per dispatcher.",
	}, []string{"dispatcher"})
	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "pool_queued",
		Help:      "Pending tasks across all deques.",
	}, []string{"dispatcher"})
	poolDelayed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "pool_delayed",
		Help:      "Tasks waiting in the delay manager.",
	}, []string{"dispatcher"})
	workerQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "worker_queued",
		Help:      "Pending tasks per worker deque.",
	}, []string{"dispatcher", "worker"})
	workerDone := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "worker_executed_total",
		Help:      "Executed task count snapshot per worker.",
	}, []string{"dispatcher", "worker"})
	workerStolen := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dispatch",
		Name:      "worker_stolen_total",
		Help:      "Stolen task count snapshot per worker.",
	}, []string{"dispatcher", "worker"})

	var err error
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolDelayed, err = registerCollector(reg, poolDelayed); err != nil {
		return nil, err
	}
	if workerQueued, err = registerCollector(reg, workerQueued); err != nil {
		return nil, err
	}
	if workerDone, err = registerCollector(reg, workerDone); err != nil {
		return nil, err
	}
	if workerStolen, err = registerCollector(reg, workerStolen); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		providers:    make(map[string]StatsProvider),
		poolWorkers:  poolWorkers,
		poolQueued:   poolQueued,
		poolDelayed:  poolDelayed,
		workerQueued: workerQueued,
		workerDone:   workerDone,
		workerStolen: workerStolen,
	}, nil
}

// AddDispatcher adds or replaces a dispatcher snapshot provider by name.
func (p *SnapshotPoller) AddDispatcher(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	if name == "" {
		name = "dispatcher"
	}
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
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
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		stats := provider.Stats()
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolDelayed.WithLabelValues(name).Set(float64(stats.Delayed))

		for _, ws := range provider.WorkerStats() {
			label := workerLabel(ws.Index)
			p.workerQueued.WithLabelValues(name, label).Set(float64(ws.Queued))
			p.workerDone.WithLabelValues(name, label).Set(float64(ws.Executed))
			p.workerStolen.WithLabelValues(name, label).Set(float64(ws.Stolen))
		}
	}
}

package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// SchedulerSnapshotProvider provides current scheduler gauges. Satisfied by
// *core.Scheduler.
type SchedulerSnapshotProvider interface {
	PendingCallbacks() int
	InFlight() int
}

// SnapshotPoller periodically exports scheduler snapshots into Prometheus
// gauges, independent of how often the control loop drains callbacks.
type SnapshotPoller struct {
	interval time.Duration

	schedsMu sync.RWMutex
	scheds   map[string]SchedulerSnapshotProvider

	pendingCallbacks *prom.GaugeVec
	inFlightTasks    *prom.GaugeVec

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

	pendingCallbacks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "easyasync",
		Name:      "pending_callbacks",
		Help:      "Queued, undrained completion callbacks per scheduler.",
	}, []string{"scheduler"})
	inFlightTasks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "easyasync",
		Name:      "in_flight_tasks",
		Help:      "Tasks currently holding an admission slot per scheduler.",
	}, []string{"scheduler"})

	var err error
	if pendingCallbacks, err = registerCollector(reg, pendingCallbacks); err != nil {
		return nil, err
	}
	if inFlightTasks, err = registerCollector(reg, inFlightTasks); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:         interval,
		scheds:           make(map[string]SchedulerSnapshotProvider),
		pendingCallbacks: pendingCallbacks,
		inFlightTasks:    inFlightTasks,
	}, nil
}

// AddScheduler registers a scheduler under a stable label.
func (p *SnapshotPoller) AddScheduler(name string, s SchedulerSnapshotProvider) {
	if name == "" || s == nil {
		return
	}
	p.schedsMu.Lock()
	defer p.schedsMu.Unlock()
	p.scheds[name] = s
}

// RemoveScheduler unregisters a scheduler and deletes its gauge series.
func (p *SnapshotPoller) RemoveScheduler(name string) {
	p.schedsMu.Lock()
	defer p.schedsMu.Unlock()
	delete(p.scheds, name)
	p.pendingCallbacks.DeleteLabelValues(name)
	p.inFlightTasks.DeleteLabelValues(name)
}

// Start begins polling. A second Start while running is a no-op.
func (p *SnapshotPoller) Start(ctx context.Context) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.running {
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.loop(pollCtx)
}

// Stop halts polling and waits for the poll goroutine to exit.
func (p *SnapshotPoller) Stop() {
	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.stateMu.Unlock()

	cancel()
	<-done
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.snapshot()
		}
	}
}

func (p *SnapshotPoller) snapshot() {
	p.schedsMu.RLock()
	defer p.schedsMu.RUnlock()

	for name, s := range p.scheds {
		p.pendingCallbacks.WithLabelValues(name).Set(float64(s.PendingCallbacks()))
		p.inFlightTasks.WithLabelValues(name).Set(float64(s.InFlight()))
	}
}

package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/internal/identity"
	"github.com/tonhe/mikrochart/internal/source"
)

// OpenFunc opens the metrics source for a target.
type OpenFunc func(target dashboard.Target, id *identity.Identity) (source.Source, error)

// Options wires a Poller to its collaborators. Only Provider is needed for
// SNMP and REST targets; everything else has a usable zero value.
type Options struct {
	Provider identity.Provider
	// KV persists history. Nil keeps history in memory for the session.
	KV   history.KeyValue
	Sink ChartSink
	Open OpenFunc
	// Timeout bounds each device fetch. Zero means half the poll interval.
	Timeout time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// Poller runs a polling loop for a single dashboard. Each cycle fetches
// every device, appends the sample to its history, then publishes charts.
type Poller struct {
	mu          sync.RWMutex
	cycle       sync.Mutex
	dash        *dashboard.Dashboard
	opts        Options
	logger      *slog.Logger
	store       *history.Store
	sources     map[string]source.Source
	data        map[string]*DeviceStats
	subscribers []chan EngineEvent
	refreshCh   chan struct{}
	stopCh      chan struct{}
	stopOnce    sync.Once
	pollCount   int
	errorCount  int
	lastPoll    time.Time
}

// NewPoller creates a Poller for the given dashboard.
func NewPoller(dash *dashboard.Dashboard, opts Options) (*Poller, error) {
	if opts.Open == nil {
		opts.Open = func(t dashboard.Target, id *identity.Identity) (source.Source, error) {
			return source.New(t, id, source.Options{Timeout: opts.Timeout, Logger: opts.Logger})
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = dash.Interval / 2
		if opts.Timeout <= 0 {
			opts.Timeout = 5 * time.Second
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("dashboard", dash.Name)

	p := &Poller{
		dash:      dash,
		opts:      opts,
		logger:    logger,
		sources:   make(map[string]source.Source),
		data:      make(map[string]*DeviceStats),
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	p.store = history.NewStore(opts.KV, history.Options{
		MaxEntries: dash.MaxHistory,
		Window:     dash.Window,
		Now:        opts.Now,
		Logger:     logger,
		OnPersistError: func(deviceID string, _ error) {
			PersistFailures.WithLabelValues(deviceID).Inc()
		},
	})
	p.initDevices()
	return p, nil
}

// Store exposes the history store backing this poller.
func (p *Poller) Store() *history.Store { return p.store }

// initDevices seeds stats for every device from persisted history without
// contacting any device, so a UI can render before the first poll lands.
func (p *Poller) initDevices() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, dev := range p.dash.Devices() {
		t := dev.Target
		ds := &DeviceStats{
			ID:     t.ID,
			Label:  t.Name(),
			Host:   t.Host,
			Group:  dev.Group,
			Source: t.Source,
		}
		ds.setHistory(p.store.Load(t.ID))
		p.data[t.ID] = ds
	}
}

func (ds *DeviceStats) setHistory(seq history.Sequence) {
	ds.History = seq
	ds.Trends = history.Trends(seq)
	ds.Latest, ds.HasSample = seq.Last()
}

// Run starts the polling loop. It blocks until Stop is called. The first
// poll starts immediately; later ticks that arrive while a poll is still
// running are skipped.
func (p *Poller) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.mu.Lock()
	p.notify()
	p.mu.Unlock()

	ticker := time.NewTicker(p.dash.Interval)
	defer ticker.Stop()

	go p.poll(ctx)

	for {
		select {
		case <-ticker.C:
			go p.poll(ctx)
		case <-p.refreshCh:
			go p.PollOnce(ctx)
		case <-p.stopCh:
			cancel()
			p.Close()
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if !p.cycle.TryLock() {
		p.logger.Debug("previous poll still running, skipping tick")
		return
	}
	defer p.cycle.Unlock()
	p.pollLocked(ctx)
}

// PollOnce runs a single cycle, waiting for any cycle already in flight.
func (p *Poller) PollOnce(ctx context.Context) {
	p.cycle.Lock()
	defer p.cycle.Unlock()
	p.pollLocked(ctx)
}

func (p *Poller) pollLocked(ctx context.Context) {
	for _, dev := range p.dash.Devices() {
		if ctx.Err() != nil {
			return
		}
		p.pollDevice(ctx, dev.Target)
	}
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	p.pollCount++
	p.lastPoll = p.opts.Now()
	p.notify()
	p.mu.Unlock()
	PollCycles.WithLabelValues(p.dash.Name).Inc()
}

// pollDevice fetches one device outside the stats lock, then appends and
// publishes. A failed fetch leaves the device's history untouched.
func (p *Poller) pollDevice(ctx context.Context, t dashboard.Target) {
	src, err := p.sourceFor(t)
	if err != nil {
		p.recordError(t, err)
		return
	}

	fctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	reading, err := src.Fetch(fctx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			// Stopped mid-fetch; not a device failure.
			p.logger.Debug("poll cancelled", "device", t.ID)
			return
		}
		p.recordError(t, err)
		return
	}

	now := p.opts.Now()
	sample := reading.Sample(now)
	seq := p.store.Append(t.ID, sample)

	p.mu.Lock()
	ds := p.data[t.ID]
	ds.setHistory(seq)
	ds.PollError = nil
	ds.LastPoll = now
	p.mu.Unlock()

	for _, f := range history.Fields {
		DeviceMetric.WithLabelValues(p.dash.Name, t.ID, f.Short()).Set(sample.Value(f))
	}
	HistoryLength.WithLabelValues(p.dash.Name, t.ID).Set(float64(len(seq)))

	if p.opts.Sink != nil {
		if err := p.opts.Sink.Publish(t.ID, seq); err != nil {
			p.logger.Warn("chart publish failed", "device", t.ID, "error", err)
		}
	}
}

// sourceFor returns the cached source for a target, opening it on first use.
// Only the cycle goroutine touches the source map.
func (p *Poller) sourceFor(t dashboard.Target) (source.Source, error) {
	if src, ok := p.sources[t.ID]; ok {
		return src, nil
	}
	var id *identity.Identity
	if t.Identity != "" && p.opts.Provider != nil {
		var err error
		if id, err = p.opts.Provider.Get(t.Identity); err != nil {
			return nil, err
		}
	}
	src, err := p.opts.Open(t, id)
	if err != nil {
		return nil, err
	}
	p.sources[t.ID] = src
	return src, nil
}

func (p *Poller) recordError(t dashboard.Target, err error) {
	p.logger.Warn("poll failed", "device", t.ID, "host", t.Host, "error", err)
	FetchErrors.WithLabelValues(p.dash.Name, t.ID).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[t.ID].PollError = err
	p.data[t.ID].LastPoll = p.opts.Now()
	p.errorCount++
}

// Snapshot returns a point-in-time copy of all dashboard data.
// This method acquires a read lock and is safe to call from any goroutine.
func (p *Poller) Snapshot() *DashboardSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// snapshotLocked builds a DashboardSnapshot without acquiring any lock.
// The caller must hold at least a read lock on p.mu.
func (p *Poller) snapshotLocked() *DashboardSnapshot {
	snap := &DashboardSnapshot{
		Name:       p.dash.Name,
		Interval:   p.dash.Interval,
		LastPoll:   p.lastPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
	}
	for _, group := range p.dash.Groups {
		gs := GroupSnapshot{Name: group.Name}
		for _, target := range group.Targets {
			if ds, ok := p.data[target.ID]; ok {
				gs.Devices = append(gs.Devices, *ds)
			}
		}
		snap.Groups = append(snap.Groups, gs)
	}
	return snap
}

// Subscribe returns a channel that receives an event after each poll cycle.
func (p *Poller) Subscribe() <-chan EngineEvent {
	ch := make(chan EngineEvent, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// notify sends the current snapshot to all subscribers (non-blocking).
// Must be called while holding the write lock on p.mu.
func (p *Poller) notify() {
	snap := p.snapshotLocked()
	event := EngineEvent{DashboardName: p.dash.Name, Snapshot: snap}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Info returns summary information about this engine.
func (p *Poller) Info() EngineInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state := EngineRunning
	select {
	case <-p.stopCh:
		state = EngineStopped
	default:
	}
	return EngineInfo{
		Name:       p.dash.Name,
		State:      state,
		LastPoll:   p.lastPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
	}
}

// Refresh asks a running loop to poll now, after any cycle in flight.
// Requests made while one is pending are dropped.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Stop signals the polling loop to exit. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Close releases every open source. Run calls it on exit; callers using
// only PollOnce call it themselves.
func (p *Poller) Close() {
	p.cycle.Lock()
	defer p.cycle.Unlock()
	for id, src := range p.sources {
		if err := src.Close(); err != nil {
			p.logger.Debug("closing source", "device", id, "error", err)
		}
		delete(p.sources, id)
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/internal/identity"
	"github.com/tonhe/mikrochart/internal/source"
	"github.com/tonhe/mikrochart/internal/storage"
)

type fakeSource struct {
	mu     sync.Mutex
	cpu    []float64
	err    error
	calls  int
	closed bool
}

func (f *fakeSource) Fetch(ctx context.Context) (source.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return source.Reading{}, f.err
	}
	cpu := 0.0
	if len(f.cpu) > 0 {
		cpu = f.cpu[(f.calls-1)%len(f.cpu)]
	}
	return source.Reading{
		CPULoadPercent:   cpu,
		MemoryFreeBytes:  40,
		MemoryTotalBytes: 100,
		DiskFreeBytes:    90,
		DiskTotalBytes:   100,
		ActiveUserCount:  3,
	}, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeProvider struct {
	ids map[string]identity.Identity
}

func (p *fakeProvider) List() ([]identity.Summary, error) { return nil, nil }
func (p *fakeProvider) Get(name string) (*identity.Identity, error) {
	id, ok := p.ids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", identity.ErrNotFound, name)
	}
	return &id, nil
}
func (p *fakeProvider) Add(identity.Identity) error            { return nil }
func (p *fakeProvider) Update(string, identity.Identity) error { return nil }
func (p *fakeProvider) Remove(string) error                    { return nil }

type recordingSink struct {
	mu        sync.Mutex
	published map[string]history.Sequence
}

func (s *recordingSink) Publish(id string, seq history.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published == nil {
		s.published = make(map[string]history.Sequence)
	}
	s.published[id] = seq
	return nil
}

func testDashboard(name string, ids ...string) *dashboard.Dashboard {
	g := dashboard.Group{Name: "core"}
	for _, id := range ids {
		g.Targets = append(g.Targets, dashboard.Target{ID: id, Host: id + ".lan", Label: id, Source: dashboard.SourceLocal})
	}
	return &dashboard.Dashboard{
		Name:       name,
		Interval:   30 * time.Second,
		Window:     24 * time.Hour,
		MaxHistory: 15,
		Groups:     []dashboard.Group{g},
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openWith(sources map[string]*fakeSource) OpenFunc {
	return func(t dashboard.Target, _ *identity.Identity) (source.Source, error) {
		src, ok := sources[t.ID]
		if !ok {
			return nil, errors.New("no source for " + t.ID)
		}
		return src, nil
	}
}

func TestPollOnceAppendsSample(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	src := &fakeSource{cpu: []float64{25}}
	sink := &recordingSink{}

	p, err := NewPoller(testDashboard("append", "r1"), Options{
		KV:   kv,
		Sink: sink,
		Open: openWith(map[string]*fakeSource{"r1": src}),
		Now:  clk.Now,
	})
	if err != nil {
		t.Fatalf("NewPoller() error: %v", err)
	}
	p.PollOnce(context.Background())

	snap := p.Snapshot()
	if snap.PollCount != 1 {
		t.Errorf("expected PollCount 1, got %d", snap.PollCount)
	}
	d, ok := snap.Device("r1")
	if !ok {
		t.Fatal("device r1 missing from snapshot")
	}
	if !d.HasSample || len(d.History) != 1 {
		t.Fatalf("expected one sample, got %d", len(d.History))
	}
	if d.Latest.CPUUsage != 25 || d.Latest.MemoryUsage != 60 || d.Latest.DiskUsage != 10 || d.Latest.ActiveUsers != 3 {
		t.Errorf("unexpected sample: %+v", d.Latest)
	}
	if d.Latest.Timestamp != clk.Now().UnixMilli() {
		t.Errorf("expected timestamp %d, got %d", clk.Now().UnixMilli(), d.Latest.Timestamp)
	}
	if _, ok, _ := kv.Get(history.DefaultKeyPrefix + "r1"); !ok {
		t.Error("expected history to be persisted")
	}
	if len(sink.published["r1"]) != 1 {
		t.Errorf("expected sink to receive one sample, got %d", len(sink.published["r1"]))
	}
	if got := testutil.ToFloat64(DeviceMetric.WithLabelValues("append", "r1", "cpu")); got != 25 {
		t.Errorf("expected cpu gauge 25, got %f", got)
	}
}

func TestPollFetchErrorKeepsHistory(t *testing.T) {
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	src := &fakeSource{cpu: []float64{10}}
	p, _ := NewPoller(testDashboard("fetch-error", "r1"), Options{
		Open: openWith(map[string]*fakeSource{"r1": src}),
		Now:  clk.Now,
	})

	fetchErrors := FetchErrors.WithLabelValues("fetch-error", "r1")
	before := testutil.ToFloat64(fetchErrors)

	p.PollOnce(context.Background())
	src.setErr(errors.New("timeout"))
	clk.advance(30 * time.Second)
	p.PollOnce(context.Background())

	snap := p.Snapshot()
	d, _ := snap.Device("r1")
	if len(d.History) != 1 {
		t.Errorf("expected history to keep 1 sample, got %d", len(d.History))
	}
	if d.PollError == nil {
		t.Error("expected PollError to be recorded")
	}
	if snap.ErrorCount != 1 {
		t.Errorf("expected ErrorCount 1, got %d", snap.ErrorCount)
	}
	if got := testutil.ToFloat64(fetchErrors) - before; got != 1 {
		t.Errorf("expected 1 new fetch error, got %f", got)
	}

	src.setErr(nil)
	clk.advance(30 * time.Second)
	p.PollOnce(context.Background())
	d, _ = p.Snapshot().Device("r1")
	if d.PollError != nil || len(d.History) != 2 {
		t.Errorf("expected recovery with 2 samples, got %d (err %v)", len(d.History), d.PollError)
	}
}

// stoppingSource cancels the poll's context from inside Fetch, the way Stop
// does while a request is in flight.
type stoppingSource struct {
	cancel context.CancelFunc
}

func (s stoppingSource) Fetch(ctx context.Context) (source.Reading, error) {
	s.cancel()
	<-ctx.Done()
	return source.Reading{}, ctx.Err()
}

func (stoppingSource) Close() error { return nil }

func TestPollCancelledMidFetchIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, _ := NewPoller(testDashboard("cancel", "r1"), Options{
		Open: func(dashboard.Target, *identity.Identity) (source.Source, error) {
			return stoppingSource{cancel: cancel}, nil
		},
	})
	fetchErrors := FetchErrors.WithLabelValues("cancel", "r1")
	before := testutil.ToFloat64(fetchErrors)

	p.PollOnce(ctx)

	snap := p.Snapshot()
	if snap.ErrorCount != 0 {
		t.Errorf("expected no errors counted, got %d", snap.ErrorCount)
	}
	if d, _ := snap.Device("r1"); d.PollError != nil {
		t.Errorf("expected no PollError, got %v", d.PollError)
	}
	if got := testutil.ToFloat64(fetchErrors) - before; got != 0 {
		t.Errorf("expected no fetch error metric, got %f", got)
	}
}

func TestPollerCapsHistory(t *testing.T) {
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	dash := testDashboard("cap", "r1")
	dash.MaxHistory = 5
	p, _ := NewPoller(dash, Options{
		Open: openWith(map[string]*fakeSource{"r1": {cpu: []float64{1, 2, 3, 4, 5, 6, 7}}}),
		Now:  clk.Now,
	})
	for i := 0; i < 7; i++ {
		p.PollOnce(context.Background())
		clk.advance(30 * time.Second)
	}
	d, _ := p.Snapshot().Device("r1")
	got := d.Series(history.FieldCPU)
	want := []float64{3, 4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if d.Trends[history.FieldCPU] != history.TrendStable {
		t.Errorf("expected stable cpu trend for +1 steps, got %s", d.Trends[history.FieldCPU])
	}
}

func TestPollerPreloadsHistory(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	kv := storage.NewMemoryStore(0)
	seeded := fmt.Sprintf(`[{"timestamp":%d,"cpuUsage":10,"memoryUsage":20,"diskUsage":30,"activeUsers":1},`+
		`{"timestamp":%d,"cpuUsage":40,"memoryUsage":20,"diskUsage":30,"activeUsers":1}]`,
		now.Add(-2*time.Minute).UnixMilli(), now.Add(-time.Minute).UnixMilli())
	if err := kv.Set(history.DefaultKeyPrefix+"r1", seeded); err != nil {
		t.Fatal(err)
	}

	p, _ := NewPoller(testDashboard("preload", "r1"), Options{
		KV:   kv,
		Open: openWith(nil),
		Now:  func() time.Time { return now },
	})
	d, _ := p.Snapshot().Device("r1")
	if len(d.History) != 2 {
		t.Fatalf("expected 2 preloaded samples, got %d", len(d.History))
	}
	if !d.HasSample || d.Latest.CPUUsage != 40 {
		t.Errorf("expected latest cpu 40, got %+v", d.Latest)
	}
	if d.Trends[history.FieldCPU] != history.TrendStable {
		t.Errorf("expected stable trend with 2 points, got %s", d.Trends[history.FieldCPU])
	}
}

func TestPollerIdentityLookup(t *testing.T) {
	dash := testDashboard("identity", "r1", "r2")
	dash.Groups[0].Targets[0].Identity = "known"
	dash.Groups[0].Targets[1].Identity = "missing"

	var opened []string
	p, _ := NewPoller(dash, Options{
		Provider: &fakeProvider{ids: map[string]identity.Identity{"known": {Name: "known"}}},
		Open: func(t dashboard.Target, id *identity.Identity) (source.Source, error) {
			opened = append(opened, t.ID+":"+id.Name)
			return &fakeSource{}, nil
		},
	})
	p.PollOnce(context.Background())
	p.PollOnce(context.Background())

	if len(opened) != 1 || opened[0] != "r1:known" {
		t.Errorf("expected r1 opened once with identity known, got %v", opened)
	}
	d, _ := p.Snapshot().Device("r2")
	if !errors.Is(d.PollError, identity.ErrNotFound) {
		t.Errorf("expected ErrNotFound for r2, got %v", d.PollError)
	}
}

func TestPollerWritesPNGs(t *testing.T) {
	dir := t.TempDir()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	sink := &PNGSink{Dir: dir, Fields: []history.Field{history.FieldCPU, history.FieldUsers}, Scale: 1}
	p, _ := NewPoller(testDashboard("png", "edge/1"), Options{
		Sink: sink,
		Open: openWith(map[string]*fakeSource{"edge/1": {cpu: []float64{10, 30}}}),
		Now:  clk.Now,
	})
	p.PollOnce(context.Background())
	clk.advance(30 * time.Second)
	p.PollOnce(context.Background())

	for _, f := range sink.Fields {
		path := sink.Path("edge/1", f)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("expected %s to be non-empty", path)
		}
	}
	if _, err := os.Stat(sink.Path("edge/1", history.FieldDisk)); !os.IsNotExist(err) {
		t.Error("expected no chart for an unconfigured field")
	}
}

func TestPollerSubscribe(t *testing.T) {
	p, _ := NewPoller(testDashboard("subscribe", "r1"), Options{
		Open: openWith(map[string]*fakeSource{"r1": {cpu: []float64{5}}}),
	})
	ch := p.Subscribe()
	p.PollOnce(context.Background())

	select {
	case ev := <-ch:
		if ev.DashboardName != "subscribe" {
			t.Errorf("expected dashboard subscribe, got %s", ev.DashboardName)
		}
		if ev.Snapshot.PollCount != 1 {
			t.Errorf("expected PollCount 1, got %d", ev.Snapshot.PollCount)
		}
	default:
		t.Fatal("expected an event after PollOnce")
	}
}

func TestPollerRunAndStop(t *testing.T) {
	dash := testDashboard("run", "r1")
	dash.Interval = 10 * time.Millisecond
	src := &fakeSource{cpu: []float64{1}}
	p, _ := NewPoller(dash, Options{Open: openWith(map[string]*fakeSource{"r1": src})})
	ch := p.Subscribe()

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for polled := false; !polled; {
		select {
		case ev := <-ch:
			polled = ev.Snapshot.PollCount >= 2
		case <-deadline:
			t.Fatal("timed out waiting for poll cycles")
		}
	}

	p.Stop()
	p.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if !src.isClosed() {
		t.Error("expected source to be closed on stop")
	}
	if p.Info().State != EngineStopped {
		t.Errorf("expected stopped state, got %s", p.Info().State)
	}
}

func TestPollerRefresh(t *testing.T) {
	dash := testDashboard("refresh", "r1")
	dash.Interval = time.Hour
	p, _ := NewPoller(dash, Options{Open: openWith(map[string]*fakeSource{"r1": {cpu: []float64{1}}})})
	ch := p.Subscribe()
	go p.Run()
	defer p.Stop()

	waitFor := func(count int) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case ev := <-ch:
				if ev.Snapshot.PollCount >= count {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for poll %d", count)
			}
		}
	}
	waitFor(1)
	p.Refresh()
	waitFor(2)
}

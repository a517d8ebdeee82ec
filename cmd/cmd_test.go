package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tonhe/mikrochart/internal/chart"
	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/internal/storage"
)

func TestIsSubcommand(t *testing.T) {
	for _, name := range []string{"watch", "render", "history", "probe", "identity", "config", "themes", "version", "help"} {
		if !IsSubcommand(name) {
			t.Errorf("expected %q to be a subcommand", name)
		}
	}
	for _, name := range []string{"", "--dashboard", "discover"} {
		if IsSubcommand(name) {
			t.Errorf("expected %q not to be a subcommand", name)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{64 * 1024 * 1024, "64.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncate("RouterOS CHR 7.14", 10); got != "RouterO..." {
		t.Errorf("expected %q, got %q", "RouterO...", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
}

func TestParseBackground(t *testing.T) {
	c, err := parseBackground("")
	if err != nil || c != chart.DarkBackground {
		t.Errorf("expected dark default, got %v (%v)", c, err)
	}
	c, err = parseBackground("Light")
	if err != nil || c != chart.LightBackground {
		t.Errorf("expected light background, got %v (%v)", c, err)
	}
	c, err = parseBackground("#ff0000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("expected red, got %v", c)
	}
	if _, err := parseBackground("chartreuse-ish"); err == nil {
		t.Error("expected error for unknown background")
	}
}

func TestNewRuntimeMemoryBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = storage.KindMemory
	cfg.Charts.Dir = filepath.Join(t.TempDir(), "charts")

	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	if _, ok := rt.Backend.(*storage.MemoryStore); !ok {
		t.Errorf("expected memory backend, got %T", rt.Backend)
	}
	sink, ok := rt.Sink.(*engine.PNGSink)
	if !ok {
		t.Fatalf("expected PNG sink, got %T", rt.Sink)
	}
	if sink.Dir != cfg.Charts.Dir {
		t.Errorf("expected chart dir %q, got %q", cfg.Charts.Dir, sink.Dir)
	}
	if _, err := os.Stat(sink.Dir); err != nil {
		t.Errorf("expected chart dir to exist: %v", err)
	}

	store := history.NewStore(rt.Backend, history.Options{})
	store.Append("r1", history.Sample{Timestamp: 1, CPUUsage: 5})
	if _, ok, _ := rt.Backend.Get(store.Key("r1")); !ok {
		t.Error("expected history to be written through to the backend")
	}
}

func TestNewRuntimeChartsDisabled(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = storage.KindMemory
	cfg.Charts.Enabled = false

	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()
	if rt.Sink != nil {
		t.Errorf("expected no sink, got %T", rt.Sink)
	}
}

func TestLoadDashboardRequiresName(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := LoadDashboard(cfg, ""); err == nil {
		t.Error("expected error without dashboard name")
	}
}

func TestLoadDashboardFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.toml")
	body := `
[[groups]]
name = "core"

[[groups.targets]]
host = "10.0.0.1"
source = "local"
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.PollInterval = 10 * time.Second
	dash, err := LoadDashboard(cfg, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Name != "lab" {
		t.Errorf("expected name lab, got %q", dash.Name)
	}
	if dash.Interval != cfg.PollInterval {
		t.Errorf("expected interval %v, got %v", cfg.PollInterval, dash.Interval)
	}
	if _, ok := dash.Find("10.0.0.1"); !ok {
		t.Error("expected device keyed by host")
	}
}

func TestRuntimeCloseTolerant(t *testing.T) {
	rt := &Runtime{Backend: failingBackend{}}
	rt.Close()
}

type failingBackend struct{ storage.Backend }

func (failingBackend) Close() error { return errors.New("boom") }

func TestNotOnDashboard(t *testing.T) {
	got := notOnDashboard([]string{"gw1", "old-ap", "sw2", "retired"}, []string{"gw1", "sw2"})
	if len(got) != 2 || got[0] != "old-ap" || got[1] != "retired" {
		t.Errorf("expected [old-ap retired], got %v", got)
	}
	if got := notOnDashboard(nil, []string{"gw1"}); len(got) != 0 {
		t.Errorf("expected nothing, got %v", got)
	}
}

func TestStoredDevicesFromBackend(t *testing.T) {
	backend := storage.NewMemoryStore(0)
	if err := backend.Set(history.DefaultKeyPrefix+"old-ap", "[]"); err != nil {
		t.Fatal(err)
	}
	store := history.NewStore(backend, history.Options{})
	store.Append("gw1", history.Sample{Timestamp: time.Now().UnixMilli(), CPUUsage: 5})

	ids, err := store.Devices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	extra := notOnDashboard(ids, []string{"gw1"})
	if len(extra) != 1 || extra[0] != "old-ap" {
		t.Errorf("expected old-ap off the dashboard, got %v", extra)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tonhe/mikrochart/internal/chart"
	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/storage"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Runtime holds the long-lived pieces a polling session needs.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Backend storage.Backend
	Sink    engine.ChartSink

	logFile *os.File
}

// NewRuntime opens storage and builds the chart sink when charts are enabled. Logs go to w, or to the log file under
// the data directory when w is nil.
func NewRuntime(cfg *config.Config, w io.Writer) (*Runtime, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating directories: %w", err)
	}
	rt := &Runtime{Config: cfg}
	if w == nil {
		path, err := config.GetLogPath()
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		rt.logFile = f
		w = f
	}
	rt.Logger = cfg.NewLogger(w)

	opts, err := cfg.StorageOptions()
	if err != nil {
		rt.Close()
		return nil, err
	}
	opts.Logger = rt.Logger
	rt.Backend, err = storage.Open(opts)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("opening %s storage: %w", opts.Kind, err)
	}

	if cfg.Charts.Enabled {
		sink, err := newPNGSink(cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Sink = sink
	}
	return rt, nil
}

// EngineOptions returns poller options wired to this runtime.
func (rt *Runtime) EngineOptions() engine.Options {
	return engine.Options{
		Provider: openStore(),
		KV:       rt.Backend,
		Sink:     rt.Sink,
		Logger:   rt.Logger,
	}
}

// Close releases storage and the log file.
func (rt *Runtime) Close() {
	if rt.Backend != nil {
		if err := rt.Backend.Close(); err != nil && rt.Logger != nil {
			rt.Logger.Warn("closing storage", "error", err)
		}
	}
	if rt.logFile != nil {
		rt.logFile.Close()
	}
}

func newPNGSink(cfg *config.Config) (*engine.PNGSink, error) {
	dir, err := cfg.ChartsDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}
	bg, err := parseBackground(cfg.Charts.Background)
	if err != nil {
		return nil, err
	}
	return &engine.PNGSink{
		Dir:        dir,
		Config:     cfg.ChartFor,
		Scale:      cfg.Charts.Scale,
		Background: bg,
	}, nil
}

// parseBackground accepts "dark", "light" or any color chart.ParseColor reads.
func parseBackground(s string) (drawing.Color, error) {
	switch strings.ToLower(s) {
	case "", "dark":
		return chart.DarkBackground, nil
	case "light":
		return chart.LightBackground, nil
	}
	c, err := chart.ParseColor(s)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("charts.background: %w", err)
	}
	return c, nil
}

// LoadDashboard resolves a dashboard by name or path and applies the
// config-wide defaults to it.
func LoadDashboard(cfg *config.Config, nameOrPath string) (*dashboard.Dashboard, error) {
	if nameOrPath == "" {
		nameOrPath = cfg.DefaultDashboard
	}
	if nameOrPath == "" {
		return nil, errors.New("no dashboard given and no default_dashboard configured")
	}
	dir, err := config.GetDashboardsDir()
	if err != nil {
		return nil, err
	}
	dash, err := dashboard.Resolve(dir, nameOrPath)
	if err != nil {
		return nil, err
	}
	cfg.FillDashboard(dash)
	return dash, nil
}

// LoadConfig reads the environment file and the config, exiting on a config
// that exists but cannot be parsed.
func LoadConfig() *config.Config {
	if path, err := config.GetEnvPath(); err == nil {
		if err := config.LoadEnv(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reading %s: %v\n", path, err)
		}
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

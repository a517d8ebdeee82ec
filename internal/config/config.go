package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tonhe/mikrochart/internal/chart"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/internal/storage"
)

type Config struct {
	Theme            string        `toml:"theme"`
	DefaultIdentity  string        `toml:"default_identity"`
	DefaultDashboard string        `toml:"default_dashboard"`
	PollInterval     time.Duration `toml:"-"`
	PollIntervalStr  string        `toml:"poll_interval"`
	HistoryWindow    time.Duration `toml:"-"`
	HistoryWindowStr string        `toml:"history_window"`
	LogLevel         string        `toml:"log_level"`
	MetricsListen    string        `toml:"metrics_listen"`

	Storage StorageConfig `toml:"storage"`
	Charts  ChartsConfig  `toml:"charts"`
}

// StorageConfig selects where history sequences are persisted.
type StorageConfig struct {
	Backend   string `toml:"backend"` // file, sqlite, redis, memory
	Path      string `toml:"path,omitempty"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	RedisDB   int    `toml:"redis_db,omitempty"`
	Quota     int    `toml:"quota,omitempty"`
}

// ChartsConfig controls the PNG charts written after every poll.
type ChartsConfig struct {
	Enabled    bool                  `toml:"enabled"`
	Dir        string                `toml:"dir,omitempty"`
	Width      int                   `toml:"width"`
	Height     int                   `toml:"height"`
	Scale      float64               `toml:"scale"`
	Grid       bool                  `toml:"grid"`
	Background string                `toml:"background"` // dark, light
	Styles     map[string]ChartStyle `toml:"styles"`     // keyed by cpu, memory, disk, users
}

// ChartStyle is the per-field look of a chart.
type ChartStyle struct {
	Kind  string `toml:"kind"`
	Color string `toml:"color"`
}

var defaultStyles = map[string]ChartStyle{
	"cpu":    {Kind: string(chart.KindArea), Color: "rgb(59, 130, 246)"},
	"memory": {Kind: string(chart.KindLine), Color: "rgb(16, 185, 129)"},
	"disk":   {Kind: string(chart.KindBar), Color: "rgb(245, 158, 11)"},
	"users":  {Kind: string(chart.KindLine), Color: "rgb(139, 92, 246)"},
}

func DefaultConfig() *Config {
	return &Config{
		Theme:            "mikrotik",
		PollInterval:     dashboard.DefaultInterval,
		PollIntervalStr:  dashboard.DefaultInterval.String(),
		HistoryWindow:    dashboard.DefaultWindow,
		HistoryWindowStr: dashboard.DefaultWindow.String(),
		LogLevel:         "info",
		Storage:          StorageConfig{Backend: storage.KindFile},
		Charts: ChartsConfig{
			Enabled:    true,
			Width:      320,
			Height:     120,
			Scale:      2,
			Grid:       true,
			Background: "dark",
			Styles:     map[string]ChartStyle{},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.PollIntervalStr != "" {
		if cfg.PollInterval, err = time.ParseDuration(cfg.PollIntervalStr); err != nil {
			return nil, fmt.Errorf("poll_interval: %w", err)
		}
	}
	if cfg.HistoryWindowStr != "" {
		if cfg.HistoryWindow, err = time.ParseDuration(cfg.HistoryWindowStr); err != nil {
			return nil, fmt.Errorf("history_window: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	cfg.PollIntervalStr = cfg.PollInterval.String()
	cfg.HistoryWindowStr = cfg.HistoryWindow.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects settings that would only fail later, mid-poll.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.HistoryWindow <= 0 {
		return errors.New("history_window must be positive")
	}
	switch c.Storage.Backend {
	case "", storage.KindFile, storage.KindSQLite, storage.KindRedis, storage.KindMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	for name := range c.Charts.Styles {
		f, err := history.ParseField(name)
		if err != nil {
			return fmt.Errorf("charts.styles: %w", err)
		}
		if err := c.ChartFor(f).Validate(); err != nil {
			return fmt.Errorf("charts.styles.%s: %w", name, err)
		}
	}
	return nil
}

// ChartFor builds the render config for one field. Kind and color left
// unset in the file come from the built-in style for that field.
func (c *Config) ChartFor(f history.Field) chart.Config {
	style := c.styleFor(f)
	def := defaultStyles[f.Short()]
	if style.Kind == "" {
		style.Kind = def.Kind
	}
	if style.Color == "" {
		style.Color = def.Color
	}
	kind, err := chart.ParseKind(style.Kind)
	if err != nil {
		// Keep the raw value so Validate reports it.
		kind = chart.Kind(style.Kind)
	}
	return chart.Config{
		Kind:          kind,
		StrokeColor:   style.Color,
		Width:         c.Charts.Width,
		Height:        c.Charts.Height,
		ShowGridLines: c.Charts.Grid,
		Format:        f.Format,
	}
}

// styleFor finds the configured style for f under any of its accepted names.
func (c *Config) styleFor(f history.Field) ChartStyle {
	if s, ok := c.Charts.Styles[f.Short()]; ok {
		return s
	}
	for name, s := range c.Charts.Styles {
		if pf, err := history.ParseField(name); err == nil && pf == f {
			return s
		}
	}
	return ChartStyle{}
}

// FillDashboard applies the global poll interval and history window to a
// dashboard whose file leaves them unset.
func (c *Config) FillDashboard(d *dashboard.Dashboard) {
	if d.IntervalStr == "" && c.PollInterval > 0 {
		d.Interval = c.PollInterval
	}
	if d.WindowStr == "" && c.HistoryWindow > 0 {
		d.Window = c.HistoryWindow
	}
	if d.DefaultIdentity == "" && c.DefaultIdentity != "" {
		for i := range d.Groups {
			for j := range d.Groups[i].Targets {
				if d.Groups[i].Targets[j].Identity == "" {
					d.Groups[i].Targets[j].Identity = c.DefaultIdentity
				}
			}
		}
	}
}

// StorageOptions resolves the storage section into backend options, filling
// in default paths under the data directory.
func (c *Config) StorageOptions() (storage.Options, error) {
	opts := storage.Options{
		Kind:          c.Storage.Backend,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: os.Getenv(EnvRedisPassword),
		RedisDB:       c.Storage.RedisDB,
		TTL:           c.HistoryWindow,
		Quota:         c.Storage.Quota,
	}
	if opts.Path != "" {
		return opts, nil
	}
	var err error
	switch opts.Kind {
	case "", storage.KindFile:
		opts.Path, err = GetHistoryDir()
	case storage.KindSQLite:
		opts.Path, err = inDataDir("history.db")
	}
	return opts, err
}

// ChartsDir returns the configured chart directory or the default one.
func (c *Config) ChartsDir() (string, error) {
	if c.Charts.Dir != "" {
		return c.Charts.Dir, nil
	}
	return GetChartsDir()
}

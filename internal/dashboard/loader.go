package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied to fields a dashboard file leaves empty.
const (
	DefaultInterval   = 30 * time.Second
	DefaultWindow     = 24 * time.Hour
	DefaultMaxHistory = 15
	DefaultSNMPPort   = 161
)

// LoadDashboard reads a TOML file at path and returns a populated Dashboard
// with defaults applied: 30s interval, 24h window, 15 history entries, snmp
// source on port 161, and default_identity for targets without one.
func LoadDashboard(path string) (*Dashboard, error) {
	var dash Dashboard
	if _, err := toml.DecodeFile(path, &dash); err != nil {
		return nil, err
	}
	if dash.Name == "" {
		dash.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := dash.applyDefaults(); err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", path, err)
	}
	return &dash, nil
}

func (d *Dashboard) applyDefaults() error {
	var err error
	if d.Interval, err = parseDuration(d.IntervalStr, DefaultInterval); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	if d.Window, err = parseDuration(d.WindowStr, DefaultWindow); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if d.MaxHistory <= 0 {
		d.MaxHistory = DefaultMaxHistory
	}

	seen := make(map[string]bool)
	for i := range d.Groups {
		for j := range d.Groups[i].Targets {
			t := &d.Groups[i].Targets[j]
			if t.Source == "" {
				t.Source = SourceSNMP
			}
			switch t.Source {
			case SourceSNMP:
				if t.Port == 0 {
					t.Port = DefaultSNMPPort
				}
			case SourceREST:
				if t.URL == "" && t.Host != "" {
					t.URL = "https://" + t.Host
				}
			case SourceLocal:
				if t.DiskPath == "" {
					t.DiskPath = "/"
				}
			default:
				return fmt.Errorf("target %q: unknown source %q", t.Name(), t.Source)
			}
			if t.Identity == "" {
				t.Identity = d.DefaultIdentity
			}
			if t.ID == "" {
				t.ID = t.Name()
			}
			if t.ID == "" {
				return fmt.Errorf("group %q: target %d has no id, label or host", d.Groups[i].Name, j+1)
			}
			if seen[t.ID] {
				return fmt.Errorf("duplicate device id %q", t.ID)
			}
			seen[t.ID] = true
		}
	}
	return nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

// SaveDashboard writes a Dashboard to a TOML file at path.
// It serialises the durations back into their string fields before encoding.
func SaveDashboard(dash *Dashboard, path string) error {
	dash.IntervalStr = dash.Interval.String()
	dash.WindowStr = dash.Window.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(dash)
}

// ListDashboards returns the base names (without .toml extension) of all TOML
// files found in dir, sorted.
func ListDashboards(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".toml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve loads a dashboard by name from dir, or directly when nameOrPath is
// a path to a TOML file.
func Resolve(dir, nameOrPath string) (*Dashboard, error) {
	path := nameOrPath
	if !strings.HasSuffix(path, ".toml") {
		path = filepath.Join(dir, nameOrPath+".toml")
	}
	return LoadDashboard(path)
}

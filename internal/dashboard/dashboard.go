package dashboard

import "time"

// Source kinds a target can be polled with.
const (
	SourceSNMP  = "snmp"
	SourceREST  = "rest"
	SourceLocal = "local"
)

// Dashboard is a named set of devices polled together, loaded from TOML.
type Dashboard struct {
	Name            string        `toml:"name"`
	DefaultIdentity string        `toml:"default_identity"`
	IntervalStr     string        `toml:"interval"`
	Interval        time.Duration `toml:"-"`
	WindowStr       string        `toml:"window"`
	Window          time.Duration `toml:"-"`
	MaxHistory      int           `toml:"max_history"`
	Groups          []Group       `toml:"groups"`
}

// Group is a named collection of devices, shown together in the overview.
type Group struct {
	Name    string   `toml:"name"`
	Targets []Target `toml:"targets"`
}

// Target is a single router to poll.
type Target struct {
	// ID keys the device's history. Defaults to Label, then Host.
	ID       string `toml:"id,omitempty"`
	Host     string `toml:"host"`
	Label    string `toml:"label,omitempty"`
	Identity string `toml:"identity,omitempty"`
	Source   string `toml:"source,omitempty"`

	// SNMP
	Port     int    `toml:"port,omitempty"`
	UsersOID string `toml:"users_oid,omitempty"`

	// REST; defaults to https://<host>
	URL string `toml:"url,omitempty"`

	// Local
	DiskPath string `toml:"disk_path,omitempty"`
}

// Name returns the label, falling back to the host.
func (t Target) Name() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Host
}

// Device pairs a target with the group it belongs to.
type Device struct {
	Group  string
	Target Target
}

// Devices flattens every group into one ordered list.
func (d *Dashboard) Devices() []Device {
	var out []Device
	for _, g := range d.Groups {
		for _, t := range g.Targets {
			out = append(out, Device{Group: g.Name, Target: t})
		}
	}
	return out
}

// Find returns the target with the given ID.
func (d *Dashboard) Find(id string) (Target, bool) {
	for _, dev := range d.Devices() {
		if dev.Target.ID == id {
			return dev.Target, true
		}
	}
	return Target{}, false
}

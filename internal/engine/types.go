package engine

import (
	"time"

	"github.com/tonhe/mikrochart/internal/history"
)

// DeviceStats holds the latest sample and the retained history for one device.
type DeviceStats struct {
	ID        string
	Label     string
	Host      string
	Group     string
	Source    string
	Latest    history.Sample
	HasSample bool
	History   history.Sequence
	Trends    map[history.Field]history.Trend
	PollError error
	LastPoll  time.Time
}

// Series returns one field of the device's history, oldest first.
func (d DeviceStats) Series(f history.Field) []float64 {
	return history.SeriesFor(d.History, f)
}

// DashboardSnapshot is a point-in-time view of all devices in a dashboard.
type DashboardSnapshot struct {
	Name       string
	Groups     []GroupSnapshot
	Interval   time.Duration
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
}

// GroupSnapshot is a point-in-time view of a device group.
type GroupSnapshot struct {
	Name    string
	Devices []DeviceStats
}

// Device returns the stats for id, searching every group.
func (s *DashboardSnapshot) Device(id string) (DeviceStats, bool) {
	for _, g := range s.Groups {
		for _, d := range g.Devices {
			if d.ID == id {
				return d, true
			}
		}
	}
	return DeviceStats{}, false
}

// EngineState represents the lifecycle state of a polling engine.
type EngineState int

const (
	EngineStopped EngineState = iota
	EngineRunning
	EngineError
)

func (s EngineState) String() string {
	switch s {
	case EngineRunning:
		return "running"
	case EngineError:
		return "error"
	default:
		return "stopped"
	}
}

// EngineInfo provides summary information about a running engine.
type EngineInfo struct {
	Name       string
	State      EngineState
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
}

// EngineEvent is emitted to subscribers after each poll cycle.
type EngineEvent struct {
	DashboardName string
	Snapshot      *DashboardSnapshot
}

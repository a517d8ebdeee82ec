// Package source fetches current device metrics from routers or the local host.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/internal/identity"
)

// Reading is the raw metrics shape every source produces.
type Reading struct {
	CPULoadPercent   float64
	MemoryFreeBytes  uint64
	MemoryTotalBytes uint64
	DiskFreeBytes    uint64
	DiskTotalBytes   uint64
	ActiveUserCount  int
}

// Sample converts a reading into a history sample stamped at.
func (r Reading) Sample(at time.Time) history.Sample {
	users := r.ActiveUserCount
	if users < 0 {
		users = 0
	}
	return history.Sample{
		Timestamp:   at.UnixMilli(),
		CPUUsage:    clampPercent(r.CPULoadPercent),
		MemoryUsage: usagePercent(r.MemoryFreeBytes, r.MemoryTotalBytes),
		DiskUsage:   usagePercent(r.DiskFreeBytes, r.DiskTotalBytes),
		ActiveUsers: users,
	}
}

func usagePercent(free, total uint64) float64 {
	if total == 0 {
		return 0
	}
	if free > total {
		free = total
	}
	return clampPercent(float64(total-free) / float64(total) * 100)
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// Source fetches the current reading for one device.
type Source interface {
	Fetch(ctx context.Context) (Reading, error)
	Close() error
}

// Options tune sources created by New.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// New opens the source configured for target. The identity may be nil for
// local targets.
func New(target dashboard.Target, id *identity.Identity, opts Options) (Source, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch target.Source {
	case dashboard.SourceSNMP, "":
		if id == nil || !id.HasSNMP() {
			return nil, fmt.Errorf("target %q: identity %q has no SNMP credentials", target.ID, target.Identity)
		}
		return NewSNMPSource(target.Host, target.Port, &id.SNMP, target.UsersOID, opts.Timeout)
	case dashboard.SourceREST:
		if id == nil || !id.HasAPI() {
			return nil, fmt.Errorf("target %q: identity %q has no API credentials", target.ID, target.Identity)
		}
		return NewRESTSource(target.URL, id.API, opts.Timeout), nil
	case dashboard.SourceLocal:
		return NewLocalSource(target.DiskPath, opts.Logger), nil
	}
	return nil, fmt.Errorf("target %q: unknown source %q", target.ID, target.Source)
}

package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// LocalSource reports the machine mikrochart runs on. It is useful for
// demos and for charting a RouterOS CHR from inside the same VM.
type LocalSource struct {
	diskPath string
	logger   *slog.Logger
}

func NewLocalSource(diskPath string, logger *slog.Logger) *LocalSource {
	if diskPath == "" {
		diskPath = "/"
	}
	return &LocalSource{diskPath: diskPath, logger: logger}
}

func (s *LocalSource) Fetch(ctx context.Context) (Reading, error) {
	var r Reading

	load, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return r, fmt.Errorf("cpu: %w", err)
	}
	if len(load) > 0 {
		r.CPULoadPercent = load[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return r, fmt.Errorf("memory: %w", err)
	}
	r.MemoryTotalBytes = vm.Total
	r.MemoryFreeBytes = vm.Available

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return r, fmt.Errorf("disk %s: %w", s.diskPath, err)
	}
	r.DiskTotalBytes = du.Total
	r.DiskFreeBytes = du.Free

	users, err := host.UsersWithContext(ctx)
	if err != nil {
		s.logger.Debug("user count unavailable", "error", err)
	}
	r.ActiveUserCount = len(users)
	return r, nil
}

func (s *LocalSource) Close() error { return nil }

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/history"
)

func watchCmd(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	dashName := fs.String("dashboard", "", "Dashboard name or path (default from config)")
	once := fs.Bool("once", false, "Run a single poll cycle and exit")
	metrics := fs.String("metrics", "", "Serve Prometheus metrics on this address (overrides metrics_listen)")
	chartsDir := fs.String("charts", "", "Write charts to this directory (overrides charts.dir)")
	noCharts := fs.Bool("no-charts", false, "Do not write PNG charts")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mikrochart watch [--dashboard NAME] [--once] [--metrics ADDR] [--charts DIR]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := LoadConfig()
	if *chartsDir != "" {
		cfg.Charts.Dir = *chartsDir
	}
	if *noCharts {
		cfg.Charts.Enabled = false
	}
	if *metrics != "" {
		cfg.MetricsListen = *metrics
	}

	dash, err := LoadDashboard(cfg, *dashName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
		os.Exit(1)
	}

	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	poller, err := engine.NewPoller(dash, rt.EngineOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		poller.PollOnce(ctx)
		poller.Close()
		printSnapshot(poller.Snapshot())
		return
	}

	if cfg.MetricsListen != "" {
		srv := serveMetrics(cfg.MetricsListen, rt.Logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(sctx)
		}()
	}

	events := poller.Subscribe()
	go poller.Run()
	rt.Logger.Info("watching dashboard", "dashboard", dash.Name,
		"devices", len(dash.Devices()), "interval", dash.Interval)

	lastCount := 0
	for {
		select {
		case <-ctx.Done():
			poller.Stop()
			poller.Close()
			rt.Logger.Info("stopped", "dashboard", dash.Name)
			return
		case <-events:
			snap := poller.Snapshot()
			if snap.PollCount == lastCount {
				continue
			}
			lastCount = snap.PollCount
			logCycle(rt.Logger, snap)
		}
	}
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func logCycle(logger *slog.Logger, snap *engine.DashboardSnapshot) {
	for _, g := range snap.Groups {
		for _, d := range g.Devices {
			if d.PollError != nil {
				logger.Warn("device unavailable", "device", d.ID, "error", d.PollError)
				continue
			}
			if !d.HasSample {
				continue
			}
			logger.Info("sample",
				"device", d.ID,
				"cpu", d.Latest.CPUUsage,
				"memory", d.Latest.MemoryUsage,
				"disk", d.Latest.DiskUsage,
				"users", d.Latest.ActiveUsers,
				"history", len(d.History),
			)
		}
	}
}

func printSnapshot(snap *engine.DashboardSnapshot) {
	fmt.Printf("%-20s  %-8s  %-10s  %-10s  %-10s  %-8s  %s\n", "Device", "Status", "CPU", "Memory", "Disk", "Users", "Samples")
	for _, g := range snap.Groups {
		for _, d := range g.Devices {
			if d.PollError != nil {
				fmt.Printf("%-20s  %-8s  %v\n", truncate(d.Label, 20), "error", d.PollError)
				continue
			}
			fmt.Printf("%-20s  %-8s  %-10s  %-10s  %-10s  %-8s  %d\n",
				truncate(d.Label, 20), "ok",
				cell(d, history.FieldCPU),
				cell(d, history.FieldMemory),
				cell(d, history.FieldDisk),
				cell(d, history.FieldUsers),
				len(d.History),
			)
		}
	}
}

func cell(d engine.DeviceStats, f history.Field) string {
	if !d.HasSample {
		return "-"
	}
	return f.Format(d.Latest.Value(f)) + " " + d.Trends[f].Arrow()
}

package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tonhe/mikrochart/internal/history"
	"gopkg.in/yaml.v3"
)

// deviceHistory is the exported shape of one device's stored sequence.
type deviceHistory struct {
	Device  string            `json:"device" yaml:"device"`
	Trends  map[string]string `json:"trends" yaml:"trends"`
	Samples history.Sequence  `json:"samples" yaml:"samples"`
}

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dashName := fs.String("dashboard", "", "Dashboard name or path (default from config)")
	deviceID := fs.String("device", "", "Device id (default every device)")
	format := fs.String("format", "table", "Output format: table, json or yaml")
	all := fs.Bool("all", false, "Include every device with stored history, on the dashboard or not")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mikrochart history [--dashboard NAME] [--device ID] [--all] [--format table|json|yaml]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := LoadConfig()
	cfg.Charts.Enabled = false

	dash, err := LoadDashboard(cfg, *dashName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
		os.Exit(1)
	}
	var ids []string
	for _, d := range dash.Devices() {
		ids = append(ids, d.Target.ID)
	}
	if *deviceID != "" {
		t, ok := dash.Find(*deviceID)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no device %q on dashboard %q\n", *deviceID, dash.Name)
			os.Exit(1)
		}
		ids = []string{t.ID}
	}

	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	store := history.NewStore(rt.Backend, history.Options{
		MaxEntries: dash.MaxHistory,
		Window:     dash.Window,
		Logger:     rt.Logger,
	})

	if *deviceID == "" {
		stored, err := store.Devices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: listing stored history: %v\n", err)
		}
		extra := notOnDashboard(stored, ids)
		switch {
		case *all:
			ids = append(ids, extra...)
		case len(extra) > 0:
			fmt.Fprintf(os.Stderr, "Note: %d device(s) with stored history are not on dashboard %q (use --all): %s\n",
				len(extra), dash.Name, strings.Join(extra, ", "))
		}
	}

	out := make([]deviceHistory, 0, len(ids))
	for _, id := range ids {
		seq := store.Load(id)
		trends := make(map[string]string, len(history.Fields))
		for f, t := range history.Trends(seq) {
			trends[f.Short()] = t.String()
		}
		out = append(out, deviceHistory{Device: id, Trends: trends, Samples: seq})
	}

	switch strings.ToLower(*format) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(out)
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		err = enc.Encode(out)
		if err == nil {
			err = enc.Close()
		}
	case "table":
		printHistoryTable(out)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// notOnDashboard returns the stored ids missing from known, in stored order.
func notOnDashboard(stored, known []string) []string {
	onDash := make(map[string]bool, len(known))
	for _, id := range known {
		onDash[id] = true
	}
	var extra []string
	for _, id := range stored {
		if !onDash[id] {
			extra = append(extra, id)
		}
	}
	return extra
}

func printHistoryTable(devices []deviceHistory) {
	for i, d := range devices {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s  (%d samples)\n", d.Device, len(d.Samples))
		if len(d.Samples) == 0 {
			fmt.Println("  no history")
			continue
		}
		fmt.Printf("  %-19s  %8s  %8s  %8s  %6s\n", "Time", "CPU", "Memory", "Disk", "Users")
		for _, s := range d.Samples {
			fmt.Printf("  %-19s  %8s  %8s  %8s  %6d\n",
				s.Time().Local().Format("2006-01-02 15:04:05"),
				history.FieldCPU.Format(s.CPUUsage),
				history.FieldMemory.Format(s.MemoryUsage),
				history.FieldDisk.Format(s.DiskUsage),
				s.ActiveUsers,
			)
		}
		fmt.Print("  trend:")
		for _, f := range history.Fields {
			fmt.Printf("  %s %s", f.Short(), d.Trends[f.Short()])
		}
		fmt.Println()
	}
}

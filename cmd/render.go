package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tonhe/mikrochart/internal/chart"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/history"
)

func renderCmd(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	dashName := fs.String("dashboard", "", "Dashboard name or path (default from config)")
	deviceID := fs.String("device", "", "Device id to render (default every device)")
	fieldName := fs.String("field", "", "Field to render: cpu, memory, disk or users (default all)")
	kind := fs.String("kind", "", "Chart kind: line, area or bar (default from config)")
	color := fs.String("color", "", "Stroke color, e.g. rgb(59, 130, 246) or #3b82f6")
	width := fs.Int("width", 0, "Chart width in points (default from config)")
	height := fs.Int("height", 0, "Chart height in points (default from config)")
	scale := fs.Float64("scale", 0, "Pixel density multiplier (default from config)")
	out := fs.String("out", "", "Output file for a single chart, or - for stdout")
	dir := fs.String("dir", "", "Output directory (default charts.dir)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mikrochart render [--dashboard NAME] [--device ID] [--field FIELD] [--kind KIND] [--out FILE]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := LoadConfig()
	cfg.Charts.Enabled = false
	if *width > 0 {
		cfg.Charts.Width = *width
	}
	if *height > 0 {
		cfg.Charts.Height = *height
	}
	if *scale > 0 {
		cfg.Charts.Scale = *scale
	}
	if *dir != "" {
		cfg.Charts.Dir = *dir
	}

	fields := history.Fields
	if *fieldName != "" {
		f, err := history.ParseField(*fieldName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fields = []history.Field{f}
	}

	dash, err := LoadDashboard(cfg, *dashName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
		os.Exit(1)
	}
	devices := dash.Devices()
	if *deviceID != "" {
		t, ok := dash.Find(*deviceID)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no device %q on dashboard %q\n", *deviceID, dash.Name)
			os.Exit(1)
		}
		devices = []dashboard.Device{{Target: t}}
	}
	if *out != "" && (len(devices) != 1 || len(fields) != 1) {
		fmt.Fprintln(os.Stderr, "Error: --out needs a single --device and --field")
		os.Exit(1)
	}

	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	bg, err := parseBackground(cfg.Charts.Background)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	chartConfig := func(f history.Field) chart.Config {
		c := cfg.ChartFor(f)
		if *kind != "" {
			c.Kind = chart.Kind(*kind)
			if k, err := chart.ParseKind(*kind); err == nil {
				c.Kind = k
			}
		}
		if *color != "" {
			c.StrokeColor = *color
		}
		return c
	}
	for _, f := range fields {
		if err := chartConfig(f).Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	store := history.NewStore(rt.Backend, history.Options{
		MaxEntries: dash.MaxHistory,
		Window:     dash.Window,
		Logger:     rt.Logger,
	})

	if *out != "" {
		f := fields[0]
		seq := store.Load(devices[0].Target.ID)
		img, err := chart.RenderImage(history.SeriesFor(seq, f), chartConfig(f), cfg.Charts.Scale, bg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
			os.Exit(1)
		}
		if *out == "-" {
			err = chart.EncodePNG(os.Stdout, img)
		} else {
			err = chart.SavePNG(*out, img)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			os.Exit(1)
		}
		return
	}

	outDir, err := cfg.ChartsDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(outDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}
	sink := &engine.PNGSink{
		Dir:        outDir,
		Fields:     fields,
		Config:     chartConfig,
		Scale:      cfg.Charts.Scale,
		Background: bg,
	}
	failed := false
	for _, d := range devices {
		seq := store.Load(d.Target.ID)
		if err := sink.Publish(d.Target.ID, seq); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
			continue
		}
		for _, f := range fields {
			fmt.Printf("%s  (%d samples)\n", filepath.Clean(sink.Path(d.Target.ID, f)), len(seq))
		}
	}
	if failed {
		os.Exit(1)
	}
}

package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tonhe/mikrochart/internal/chart"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart size used when a config leaves it unset.
const (
	DefaultChartWidth  = 320
	DefaultChartHeight = 120
)

// ChartSink receives a device's history after every successful append.
type ChartSink interface {
	Publish(deviceID string, seq history.Sequence) error
}

// PNGSink renders one chart per field and writes it to Dir as
// <device>-<field>.png.
type PNGSink struct {
	Dir        string
	Fields     []history.Field
	Config     func(history.Field) chart.Config
	Scale      float64
	Background drawing.Color
}

// Path returns the file a device's chart for f is written to.
func (s *PNGSink) Path(deviceID string, f history.Field) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s-%s.png", fileSafe(deviceID), f.Short()))
}

func (s *PNGSink) Publish(deviceID string, seq history.Sequence) error {
	fields := s.Fields
	if len(fields) == 0 {
		fields = history.Fields
	}
	var errs []error
	for _, f := range fields {
		start := time.Now()
		cfg := chart.Config{Format: f.Format}
		if s.Config != nil {
			cfg = s.Config(f)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			cfg.Width, cfg.Height = DefaultChartWidth, DefaultChartHeight
		}
		img, err := chart.RenderImage(history.SeriesFor(seq, f), cfg, s.Scale, s.Background)
		if err != nil {
			errs = append(errs, fmt.Errorf("render %s %s: %w", deviceID, f.Short(), err))
			continue
		}
		if err := chart.SavePNG(s.Path(deviceID, f), img); err != nil {
			errs = append(errs, err)
			continue
		}
		RenderDuration.WithLabelValues(f.Short()).Observe(time.Since(start).Seconds())
	}
	return errors.Join(errs...)
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}

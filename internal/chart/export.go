package chart

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Backgrounds for exported charts.
var (
	DarkBackground  = drawing.Color{R: 17, G: 24, B: 39, A: 255}
	LightBackground = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

// RenderImage renders series into a fresh image sized by cfg and scaled by scale.
func RenderImage(series []float64, cfg Config, scale float64, background drawing.Color) (*image.RGBA, error) {
	s, err := NewRasterSurface(cfg.Width, cfg.Height, scale, background)
	if err != nil {
		return nil, err
	}
	Render(series, cfg, s)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s.Image(), nil
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("chart: create directory for %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

package chart

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestRenderImageDrawsSeries(t *testing.T) {
	c := cfg(KindArea)
	c.ShowGridLines = true
	img, err := RenderImage([]float64{10, 40, 25, 80, 60}, c, 2, DarkBackground)
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 280 {
		t.Fatalf("expected 600x280 image, got %dx%d", b.Dx(), b.Dy())
	}

	bg := DarkBackground
	changed := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.RGBAAt(x, y)
			if p.R != bg.R || p.G != bg.G || p.B != bg.B {
				changed++
			}
		}
	}
	if changed < 1000 {
		t.Errorf("expected the chart to cover many pixels, only %d changed", changed)
	}
}

func TestRenderImagePlaceholderOnly(t *testing.T) {
	img, err := RenderImage([]float64{1}, cfg(KindLine), 1, LightBackground)
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	// Only the text region around the center should differ from the background.
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if y > 55 && y < 85 {
				continue
			}
			if p := img.RGBAAt(x, y); p.R != 255 || p.G != 255 || p.B != 255 {
				t.Fatalf("unexpected drawing at (%d,%d)", x, y)
			}
		}
	}
}

func TestRasterSurfaceRejectsEmptySize(t *testing.T) {
	if _, err := NewRasterSurface(0, 10, 1, DarkBackground); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSaveAndEncodePNG(t *testing.T) {
	img, err := RenderImage([]float64{1, 2, 3}, cfg(KindBar), 1, DarkBackground)
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 300 {
		t.Errorf("expected width 300, got %d", decoded.Bounds().Dx())
	}

	path := filepath.Join(t.TempDir(), "charts", "r1-cpu.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}

func TestGradientFillStaysInsidePath(t *testing.T) {
	s, err := NewRasterSurface(100, 100, 2, LightBackground)
	if err != nil {
		t.Fatal(err)
	}
	red := drawing.Color{R: 255, A: 255}
	s.BeginPath()
	s.MoveTo(10, 10)
	s.LineTo(30, 10)
	s.LineTo(30, 30)
	s.LineTo(10, 30)
	s.ClosePath()
	s.Fill(VerticalGradient(10, 30, red, red))
	if err := s.Err(); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	img := s.Image()
	// Logical (20,20) is device (40,40), inside the square.
	if p := img.RGBAAt(40, 40); p.R != 255 || p.G != 0 || p.B != 0 {
		t.Errorf("expected red inside the path, got %v", p)
	}
	for _, pt := range [][2]int{{10, 10}, {70, 40}, {40, 70}, {150, 150}} {
		if p := img.RGBAAt(pt[0], pt[1]); p.G != 255 {
			t.Errorf("expected background at %v, got %v", pt, p)
		}
	}
}

func TestPathBoundsCoversPath(t *testing.T) {
	s, err := NewRasterSurface(100, 50, 2, DarkBackground)
	if err != nil {
		t.Fatal(err)
	}
	if b := s.pathBounds(); !b.Empty() {
		t.Errorf("expected empty bounds without a path, got %v", b)
	}
	s.BeginPath()
	s.MoveTo(10, 20)
	s.QuadTo(15, 5, 20, 20)
	s.Circle(90, 45, 20)

	b := s.pathBounds()
	want := image.Rect(18, 8, 200, 100) // (10,5)*2 padded by 2, clipped at the image edge
	if b != want {
		t.Errorf("expected %v, got %v", want, b)
	}
}

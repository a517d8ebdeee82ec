package chart

import "github.com/wcharczuk/go-chart/v2/drawing"

// Align positions text horizontally relative to its anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Paint is a fill style: a solid color, or a vertical gradient running from
// Color at y=Top to To at y=Bottom.
type Paint struct {
	Color    drawing.Color
	To       drawing.Color
	Gradient bool
	Top      float64
	Bottom   float64
}

// Solid returns a single-color paint.
func Solid(c drawing.Color) Paint {
	return Paint{Color: c}
}

// VerticalGradient returns a top-to-bottom gradient paint.
func VerticalGradient(top, bottom float64, from, to drawing.Color) Paint {
	return Paint{Color: from, To: to, Gradient: true, Top: top, Bottom: bottom}
}

// Surface is a path-based 2D drawing target measured in logical pixels.
// Path calls accumulate until Stroke or Fill consumes them; BeginPath starts over.
type Surface interface {
	Size() (width, height int)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	// Circle adds a closed circular subpath.
	Circle(x, y, r float64)
	ClosePath()
	Stroke(c drawing.Color, width float64)
	Fill(p Paint)
	// Text draws s with its vertical middle at y.
	Text(s string, x, y float64, align Align, c drawing.Color)
}

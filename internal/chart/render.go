package chart

import "github.com/wcharczuk/go-chart/v2/drawing"

// PlaceholderText is drawn instead of a chart when there are too few points.
const PlaceholderText = "Insufficient data"

// Layout constants in logical pixels.
const (
	Padding         = 20.0
	gridDivisions   = 4
	lineWidth       = 2.0
	pointRadius     = 2.5
	lastPointRadius = 5.0
	ringRadius      = 8.0
	barFraction     = 0.8
)

var (
	gridColor  = drawing.Color{R: 128, G: 128, B: 128, A: 51}
	labelColor = drawing.Color{R: 136, G: 136, B: 136, A: 255}
)

type point struct{ x, y float64 }

// layout maps series indices and values onto the plot area.
type layout struct {
	width, height float64
	left, top     float64
	plotW, plotH  float64
	baseline      float64
	lo, span      float64
	n             int
}

func newLayout(series []float64, width, height float64) layout {
	lo, hi := bounds(series)
	span := hi - lo
	if span == 0 {
		// A flat series sits on the vertical midpoint.
		lo -= 0.5
		span = 1
	}
	return layout{
		width:    width,
		height:   height,
		left:     Padding,
		top:      Padding,
		plotW:    width - 2*Padding,
		plotH:    height - 2*Padding,
		baseline: height - Padding,
		lo:       lo,
		span:     span,
		n:        len(series),
	}
}

func (l layout) x(i int) float64 {
	return l.left + float64(i)/float64(l.n-1)*l.plotW
}

func (l layout) y(v float64) float64 {
	return l.baseline - (v-l.lo)/l.span*l.plotH
}

func (l layout) points(series []float64) []point {
	pts := make([]point, len(series))
	for i, v := range series {
		pts[i] = point{l.x(i), l.y(v)}
	}
	return pts
}

func bounds(series []float64) (lo, hi float64) {
	lo, hi = series[0], series[0]
	for _, v := range series[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Render draws series onto s according to cfg. Fewer than two points draw
// only a centered placeholder. Render never clears the surface.
func Render(series []float64, cfg Config, s Surface) {
	w, h := float64(cfg.Width), float64(cfg.Height)
	if w <= 0 || h <= 0 {
		sw, sh := s.Size()
		w, h = float64(sw), float64(sh)
	}

	if len(series) < 2 {
		s.Text(PlaceholderText, w/2, h/2, AlignCenter, labelColor)
		return
	}

	stroke, err := ParseColor(cfg.StrokeColor)
	if err != nil {
		stroke = DefaultStroke
	}

	l := newLayout(series, w, h)
	if cfg.ShowGridLines {
		drawGrid(s, l)
	}

	// An unknown or empty kind draws a line.
	kind, _ := ParseKind(string(cfg.Kind))

	var last point
	switch kind {
	case KindArea:
		last = drawArea(s, l, series, stroke)
	case KindBar:
		last = drawBars(s, l, series, stroke)
	default:
		last = drawLine(s, l, series, stroke)
	}

	drawLabels(s, l, series, cfg, stroke)
	drawLastPoint(s, last, stroke)
}

func drawGrid(s Surface, l layout) {
	s.BeginPath()
	for i := 0; i <= gridDivisions; i++ {
		y := l.top + float64(i)*l.plotH/gridDivisions
		s.MoveTo(l.left, y)
		s.LineTo(l.left+l.plotW, y)
	}
	for i := 0; i <= gridDivisions; i++ {
		x := l.left + float64(i)*l.plotW/gridDivisions
		s.MoveTo(x, l.top)
		s.LineTo(x, l.baseline)
	}
	s.Stroke(gridColor, 1)
}

func drawArea(s Surface, l layout, series []float64, stroke drawing.Color) point {
	pts := l.points(series)

	s.BeginPath()
	s.MoveTo(pts[0].x, l.baseline)
	for _, p := range pts {
		s.LineTo(p.x, p.y)
	}
	s.LineTo(pts[len(pts)-1].x, l.baseline)
	s.ClosePath()
	s.Fill(VerticalGradient(l.top, l.baseline, stroke.WithAlpha(102), stroke.WithAlpha(5)))

	s.BeginPath()
	s.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		s.LineTo(p.x, p.y)
	}
	s.Stroke(stroke, lineWidth)

	drawMarkers(s, pts[:len(pts)-1], stroke)
	return pts[len(pts)-1]
}

// drawLine strokes a smoothed curve: every interior point is the control
// point of a quadratic segment ending halfway to its neighbour.
func drawLine(s Surface, l layout, series []float64, stroke drawing.Color) point {
	pts := l.points(series)
	n := len(pts)

	s.BeginPath()
	s.MoveTo(pts[0].x, pts[0].y)
	first := mid(pts[0], pts[1])
	s.LineTo(first.x, first.y)
	for i := 1; i < n-1; i++ {
		m := mid(pts[i], pts[i+1])
		s.QuadTo(pts[i].x, pts[i].y, m.x, m.y)
	}
	s.LineTo(pts[n-1].x, pts[n-1].y)
	s.Stroke(stroke, lineWidth)

	drawMarkers(s, pts[:n-1], stroke)
	return pts[n-1]
}

func drawBars(s Surface, l layout, series []float64, stroke drawing.Color) point {
	slot := l.plotW / float64(len(series))
	barW := slot * barFraction
	gap := slot - barW

	var top point
	for i, v := range series {
		x := l.left + float64(i)*slot + gap/2
		y := l.y(v)
		s.BeginPath()
		s.MoveTo(x, y)
		s.LineTo(x+barW, y)
		s.LineTo(x+barW, l.baseline)
		s.LineTo(x, l.baseline)
		s.ClosePath()
		s.Fill(VerticalGradient(y, l.baseline, stroke.WithAlpha(230), stroke.WithAlpha(77)))
		top = point{x + barW/2, y}
	}
	return top
}

func drawMarkers(s Surface, pts []point, c drawing.Color) {
	if len(pts) == 0 {
		return
	}
	s.BeginPath()
	for _, p := range pts {
		s.Circle(p.x, p.y, pointRadius)
	}
	s.Fill(Solid(c))
}

func drawLabels(s Surface, l layout, series []float64, cfg Config, stroke drawing.Color) {
	lo, hi := bounds(series)
	labelY := l.height - Padding/2
	s.Text(cfg.format(lo), l.left, labelY, AlignLeft, labelColor)
	s.Text(cfg.format(hi), l.width-Padding, Padding/2, AlignRight, labelColor)
	s.Text(cfg.format(series[len(series)-1]), l.width/2, labelY, AlignCenter, stroke)
}

func drawLastPoint(s Surface, p point, c drawing.Color) {
	s.BeginPath()
	s.Circle(p.x, p.y, lastPointRadius)
	s.Fill(Solid(c))

	s.BeginPath()
	s.Circle(p.x, p.y, ringRadius)
	s.Stroke(c.WithAlpha(128), lineWidth)
}

func mid(a, b point) point {
	return point{(a.x + b.x) / 2, (a.y + b.y) / 2}
}

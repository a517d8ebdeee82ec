package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type opKind int

const (
	opMove opKind = iota
	opLine
	opQuad
	opCircle
	opClose
)

type pathOp struct {
	kind opKind
	a    [4]float64
}

// RasterSurface draws into an in-memory RGBA image. Coordinates are logical
// pixels; the device scale is applied once when the surface is created.
type RasterSurface struct {
	img    *image.RGBA
	gc     *drawing.RasterGraphicContext
	scale  float64
	width  int
	height int
	path   []pathOp
	err    error
}

// NewRasterSurface creates a width x height logical surface backed by an
// image scaled by scale and filled with background.
func NewRasterSurface(width, height int, scale float64, background drawing.Color) (*RasterSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("chart: surface size must be positive")
	}
	if scale <= 0 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0,
		int(math.Ceil(float64(width)*scale)),
		int(math.Ceil(float64(height)*scale))))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	gc, err := newContext(img, scale)
	if err != nil {
		return nil, err
	}
	return &RasterSurface{img: img, gc: gc, scale: scale, width: width, height: height}, nil
}

func newContext(img *image.RGBA, scale float64) (*drawing.RasterGraphicContext, error) {
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, err
	}
	gc.Scale(scale, scale)
	return gc, nil
}

// Image returns the backing image at device resolution.
func (r *RasterSurface) Image() *image.RGBA { return r.img }

// Err reports the first drawing failure, if any.
func (r *RasterSurface) Err() error { return r.err }

func (r *RasterSurface) Size() (int, int) { return r.width, r.height }

func (r *RasterSurface) BeginPath() { r.path = r.path[:0] }

func (r *RasterSurface) MoveTo(x, y float64) {
	r.path = append(r.path, pathOp{kind: opMove, a: [4]float64{x, y}})
}

func (r *RasterSurface) LineTo(x, y float64) {
	r.path = append(r.path, pathOp{kind: opLine, a: [4]float64{x, y}})
}

func (r *RasterSurface) QuadTo(cx, cy, x, y float64) {
	r.path = append(r.path, pathOp{kind: opQuad, a: [4]float64{cx, cy, x, y}})
}

func (r *RasterSurface) Circle(x, y, radius float64) {
	r.path = append(r.path, pathOp{kind: opCircle, a: [4]float64{x, y, radius}})
}

func (r *RasterSurface) ClosePath() {
	r.path = append(r.path, pathOp{kind: opClose})
}

// replay rebuilds the recorded path on gc. Points map to x*k-dx, y*k-dy and
// radii scale by k; the surface's own context passes 0, 0, 1.
func (r *RasterSurface) replay(gc *drawing.RasterGraphicContext, dx, dy, k float64) {
	px := func(v float64) float64 { return v*k - dx }
	py := func(v float64) float64 { return v*k - dy }
	gc.BeginPath()
	for _, op := range r.path {
		switch op.kind {
		case opMove:
			gc.MoveTo(px(op.a[0]), py(op.a[1]))
		case opLine:
			gc.LineTo(px(op.a[0]), py(op.a[1]))
		case opQuad:
			gc.QuadCurveTo(px(op.a[0]), py(op.a[1]), px(op.a[2]), py(op.a[3]))
		case opCircle:
			x, y, rad := px(op.a[0]), py(op.a[1]), op.a[2]*k
			gc.MoveTo(x+rad, y)
			gc.ArcTo(x, y, rad, rad, 0, 2*math.Pi)
			gc.Close()
		case opClose:
			gc.Close()
		}
	}
}

// pathBounds returns the device-pixel box covering the current path, padded
// for antialiasing and clipped to the image. Quadratic control points are
// included, so the box holds the whole curve.
func (r *RasterSurface) pathBounds() image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, op := range r.path {
		switch op.kind {
		case opMove, opLine:
			add(op.a[0], op.a[1])
		case opQuad:
			add(op.a[0], op.a[1])
			add(op.a[2], op.a[3])
		case opCircle:
			add(op.a[0]-op.a[2], op.a[1]-op.a[2])
			add(op.a[0]+op.a[2], op.a[1]+op.a[2])
		}
	}
	if minX > maxX {
		return image.Rectangle{}
	}
	s := r.scale
	box := image.Rect(
		int(math.Floor(minX*s))-2, int(math.Floor(minY*s))-2,
		int(math.Ceil(maxX*s))+2, int(math.Ceil(maxY*s))+2)
	return box.Intersect(r.img.Bounds())
}

func (r *RasterSurface) Stroke(c drawing.Color, width float64) {
	r.replay(r.gc, 0, 0, 1)
	r.gc.SetStrokeColor(c)
	r.gc.SetLineWidth(width)
	r.gc.Stroke()
}

func (r *RasterSurface) Fill(p Paint) {
	if !p.Gradient {
		r.replay(r.gc, 0, 0, 1)
		r.gc.SetFillColor(p.Color)
		r.gc.Fill()
		return
	}

	// Rasterize the path as a coverage mask sized to its bounds, then
	// composite the gradient through it.
	area := r.pathBounds()
	if area.Empty() {
		return
	}
	mask := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	mgc, err := drawing.NewRasterGraphicContext(mask)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("chart: gradient mask: %w", err)
		}
		return
	}
	r.replay(mgc, float64(area.Min.X), float64(area.Min.Y), r.scale)
	mgc.SetFillColor(color.White)
	mgc.Fill()

	src := verticalGradient{
		from:   toNRGBA(p.Color),
		to:     toNRGBA(p.To),
		top:    p.Top * r.scale,
		bottom: p.Bottom * r.scale,
	}
	draw.DrawMask(r.img, area, src, area.Min, mask, image.Point{}, draw.Over)
}

func (r *RasterSurface) Text(s string, x, y float64, align Align, c drawing.Color) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	dr := &font.Drawer{Face: face}
	w := dr.MeasureString(s).Ceil()
	glyphs := image.NewRGBA(image.Rect(0, 0, w, ascent+descent))
	dr.Dst = glyphs
	dr.Src = image.NewUniform(c)
	dr.Dot = fixed.P(0, ascent)
	dr.DrawString(s)

	var src image.Image = glyphs
	if r.scale != 1 {
		src = imaging.Resize(glyphs,
			int(math.Round(float64(w)*r.scale)),
			int(math.Round(float64(ascent+descent)*r.scale)),
			imaging.Linear)
	}
	size := src.Bounds().Size()

	dx := x * r.scale
	switch align {
	case AlignCenter:
		dx -= float64(size.X) / 2
	case AlignRight:
		dx -= float64(size.X)
	}
	dy := y*r.scale - float64(size.Y)/2

	at := image.Pt(int(math.Round(dx)), int(math.Round(dy)))
	draw.Draw(r.img, image.Rectangle{Min: at, Max: at.Add(size)}, src, src.Bounds().Min, draw.Over)
}

// verticalGradient is an unbounded image whose color depends only on y.
type verticalGradient struct {
	from, to    color.NRGBA
	top, bottom float64
}

func (g verticalGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g verticalGradient) Bounds() image.Rectangle {
	return image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)
}

func (g verticalGradient) At(_, y int) color.Color {
	t := 0.0
	if g.bottom > g.top {
		t = (float64(y) + 0.5 - g.top) / (g.bottom - g.top)
	}
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.NRGBA{
		R: lerp(g.from.R, g.to.R),
		G: lerp(g.from.G, g.to.G),
		B: lerp(g.from.B, g.to.B),
		A: lerp(g.from.A, g.to.A),
	}
}

func toNRGBA(c drawing.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

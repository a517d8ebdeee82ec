package chart

import (
	"math"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

type call struct {
	op    string
	args  []float64
	text  string
	align Align
	color drawing.Color
	paint Paint
}

// recorder is a Surface that logs every call.
type recorder struct {
	w, h  int
	calls []call
}

func newRecorder(w, h int) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) Size() (int, int) { return r.w, r.h }
func (r *recorder) BeginPath()       { r.calls = append(r.calls, call{op: "begin"}) }
func (r *recorder) MoveTo(x, y float64) {
	r.calls = append(r.calls, call{op: "move", args: []float64{x, y}})
}
func (r *recorder) LineTo(x, y float64) {
	r.calls = append(r.calls, call{op: "line", args: []float64{x, y}})
}
func (r *recorder) QuadTo(cx, cy, x, y float64) {
	r.calls = append(r.calls, call{op: "quad", args: []float64{cx, cy, x, y}})
}
func (r *recorder) Circle(x, y, rad float64) {
	r.calls = append(r.calls, call{op: "circle", args: []float64{x, y, rad}})
}
func (r *recorder) ClosePath() { r.calls = append(r.calls, call{op: "close"}) }
func (r *recorder) Stroke(c drawing.Color, w float64) {
	r.calls = append(r.calls, call{op: "stroke", color: c, args: []float64{w}})
}
func (r *recorder) Fill(p Paint) { r.calls = append(r.calls, call{op: "fill", paint: p}) }
func (r *recorder) Text(s string, x, y float64, a Align, c drawing.Color) {
	r.calls = append(r.calls, call{op: "text", text: s, args: []float64{x, y}, align: a, color: c})
}

func (r *recorder) ops(op string) []call {
	var out []call
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func cfg(kind Kind) Config {
	return Config{Kind: kind, StrokeColor: "rgb(59, 130, 246)", Width: 300, Height: 140}
}

func TestRenderPlaceholder(t *testing.T) {
	for _, series := range [][]float64{nil, {}, {42}} {
		for _, kind := range Kinds {
			r := newRecorder(300, 140)
			c := cfg(kind)
			c.ShowGridLines = true
			Render(series, c, r)

			if len(r.calls) != 1 {
				t.Fatalf("%s with %d points: expected only the placeholder, got %d calls", kind, len(series), len(r.calls))
			}
			got := r.calls[0]
			if got.op != "text" || got.text != PlaceholderText {
				t.Fatalf("expected placeholder text, got %+v", got)
			}
			if got.align != AlignCenter || got.args[0] != 150 || got.args[1] != 70 {
				t.Errorf("placeholder not centered: %+v", got)
			}
		}
	}
}

func TestRenderConstantSeriesIsFlatAtMidpoint(t *testing.T) {
	r := newRecorder(300, 140)
	Render([]float64{5, 5, 5, 5}, cfg(KindLine), r)

	mid := Padding + (140-2*Padding)/2
	var checked int
	for _, c := range r.calls {
		switch c.op {
		case "move", "line":
			if c.args[1] != mid {
				t.Errorf("%s y=%v, want midpoint %v", c.op, c.args[1], mid)
			}
			checked++
		case "quad":
			if c.args[1] != mid || c.args[3] != mid {
				t.Errorf("quad %v not on midpoint %v", c.args, mid)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no path drawn for constant series")
	}
	for _, c := range r.calls {
		for _, a := range c.args {
			if math.IsNaN(a) || math.IsInf(a, 0) {
				t.Fatalf("non-finite coordinate in %+v", c)
			}
		}
	}
}

func TestRenderPointMapping(t *testing.T) {
	r := newRecorder(300, 140)
	Render([]float64{0, 10}, cfg(KindArea), r)

	// The stroke path is the second path: begin, move(first), line(last).
	var strokePath []call
	for i, c := range r.calls {
		if c.op == "stroke" {
			for j := i - 1; j >= 0 && r.calls[j].op != "begin"; j-- {
				strokePath = append([]call{r.calls[j]}, strokePath...)
			}
			break
		}
	}
	if len(strokePath) != 2 {
		t.Fatalf("expected 2 stroke path ops, got %d", len(strokePath))
	}
	first, last := strokePath[0].args, strokePath[1].args
	if first[0] != Padding || first[1] != 140-Padding {
		t.Errorf("first point = %v, want (%v, %v)", first, Padding, 140-Padding)
	}
	if last[0] != 300-Padding || last[1] != Padding {
		t.Errorf("last point = %v, want (%v, %v)", last, 300-Padding, Padding)
	}
}

func TestRenderGridDrawnFirst(t *testing.T) {
	r := newRecorder(300, 140)
	c := cfg(KindArea)
	c.ShowGridLines = true
	Render([]float64{1, 3, 2}, c, r)

	var firstPaint call
	for _, c := range r.calls {
		if c.op == "stroke" || c.op == "fill" {
			firstPaint = c
			break
		}
	}
	if firstPaint.op != "stroke" || firstPaint.color != gridColor {
		t.Errorf("expected grid stroke first, got %+v", firstPaint)
	}

	r2 := newRecorder(300, 140)
	Render([]float64{1, 3, 2}, cfg(KindArea), r2)
	for _, s := range r2.ops("stroke") {
		if s.color == gridColor {
			t.Error("grid drawn with ShowGridLines off")
		}
	}
}

func TestRenderAreaFillsGradientThenStrokes(t *testing.T) {
	r := newRecorder(300, 140)
	Render([]float64{1, 4, 2, 8}, cfg(KindArea), r)

	fillIdx, strokeIdx := -1, -1
	for i, c := range r.calls {
		if c.op == "fill" && c.paint.Gradient && fillIdx < 0 {
			fillIdx = i
		}
		if c.op == "stroke" && strokeIdx < 0 {
			strokeIdx = i
		}
	}
	if fillIdx < 0 {
		t.Fatal("area chart has no gradient fill")
	}
	if strokeIdx < fillIdx {
		t.Error("area polyline should be stroked after the fill")
	}
	p := r.calls[fillIdx].paint
	if p.Color.A <= p.To.A {
		t.Errorf("gradient should fade toward the baseline, got alpha %d -> %d", p.Color.A, p.To.A)
	}
}

func TestRenderLineIsSmoothed(t *testing.T) {
	r := newRecorder(300, 140)
	Render([]float64{1, 5, 2, 7, 3}, cfg(KindLine), r)
	if n := len(r.ops("quad")); n != 3 {
		t.Errorf("expected 3 quadratic segments for 5 points, got %d", n)
	}
	for _, f := range r.ops("fill") {
		if f.paint.Gradient {
			t.Error("line chart should not fill a gradient")
		}
	}
}

func TestRenderBars(t *testing.T) {
	r := newRecorder(300, 140)
	series := []float64{2, 4, 6, 8}
	Render(series, cfg(KindBar), r)

	var bars []call
	for _, f := range r.ops("fill") {
		if f.paint.Gradient {
			bars = append(bars, f)
		}
	}
	if len(bars) != len(series) {
		t.Fatalf("expected %d gradient bars, got %d", len(series), len(bars))
	}

	slot := (300 - 2*Padding) / float64(len(series))
	moves := r.ops("move")
	lines := r.ops("line")
	width := lines[0].args[0] - moves[0].args[0]
	if math.Abs(width-slot*0.8) > 1e-9 {
		t.Errorf("bar width = %v, want %v", width, slot*0.8)
	}
	if math.Abs(moves[0].args[0]-(Padding+slot*0.1)) > 1e-9 {
		t.Errorf("first bar x = %v, want %v", moves[0].args[0], Padding+slot*0.1)
	}
}

func TestRenderKindIgnoresCase(t *testing.T) {
	r := newRecorder(300, 140)
	Render([]float64{2, 4, 6}, cfg(Kind(" Bar ")), r)
	if n := len(r.ops("quad")); n != 0 {
		t.Errorf("expected no smoothed segments for a bar chart, got %d", n)
	}
	var gradients int
	for _, f := range r.ops("fill") {
		if f.paint.Gradient {
			gradients++
		}
	}
	if gradients != 3 {
		t.Errorf("expected 3 gradient bars, got %d", gradients)
	}

	r = newRecorder(300, 140)
	Render([]float64{2, 4, 6}, cfg("AREA"), r)
	if fills := r.ops("fill"); len(fills) == 0 || !fills[0].paint.Gradient {
		t.Error("expected an upper-case area kind to fill a gradient")
	}
}

func TestRenderLabels(t *testing.T) {
	r := newRecorder(300, 140)
	c := cfg(KindLine)
	Render([]float64{12, 3, 40, 17}, c, r)

	texts := r.ops("text")
	if len(texts) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(texts))
	}
	byText := map[string]call{}
	for _, tx := range texts {
		byText[tx.text] = tx
	}
	minL, ok := byText["3.0"]
	if !ok || minL.align != AlignLeft || minL.args[1] < 140-Padding {
		t.Errorf("min label missing or misplaced: %+v", minL)
	}
	maxL, ok := byText["40.0"]
	if !ok || maxL.align != AlignRight || maxL.args[1] > Padding {
		t.Errorf("max label missing or misplaced: %+v", maxL)
	}
	cur, ok := byText["17.0"]
	stroke, _ := ParseColor(c.StrokeColor)
	if !ok || cur.align != AlignCenter || cur.color != stroke {
		t.Errorf("current label missing or wrong style: %+v", cur)
	}
}

func TestRenderHighlightsLastPoint(t *testing.T) {
	for _, kind := range Kinds {
		r := newRecorder(300, 140)
		Render([]float64{1, 2, 3}, cfg(kind), r)

		circles := r.ops("circle")
		if len(circles) < 2 {
			t.Fatalf("%s: expected marker and ring, got %d circles", kind, len(circles))
		}
		marker, ring := circles[len(circles)-2], circles[len(circles)-1]
		if marker.args[0] != ring.args[0] || marker.args[1] != ring.args[1] {
			t.Errorf("%s: ring not centered on final marker", kind)
		}
		if ring.args[2] <= marker.args[2] {
			t.Errorf("%s: ring radius %v should exceed marker radius %v", kind, ring.args[2], marker.args[2])
		}
		for _, c := range circles[:len(circles)-2] {
			if c.args[2] >= marker.args[2] {
				t.Errorf("%s: interior marker radius %v not smaller than final %v", kind, c.args[2], marker.args[2])
			}
		}
		if last := r.calls[len(r.calls)-1]; last.op != "stroke" {
			t.Errorf("%s: expected ring stroke last, got %s", kind, last.op)
		}
	}
}

func TestRenderUsesSurfaceSizeWhenUnset(t *testing.T) {
	r := newRecorder(200, 100)
	Render(nil, Config{Kind: KindLine}, r)
	if got := r.calls[0].args; got[0] != 100 || got[1] != 50 {
		t.Errorf("placeholder at %v, want (100, 50)", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    drawing.Color
		wantErr bool
	}{
		{"rgb(59, 130, 246)", drawing.Color{R: 59, G: 130, B: 246, A: 255}, false},
		{"rgba(16,185,129,0.5)", drawing.Color{R: 16, G: 185, B: 129, A: 128}, false},
		{"#F59E0B", drawing.Color{R: 245, G: 158, B: 11, A: 255}, false},
		{"#fff", drawing.Color{R: 255, G: 255, B: 255, A: 255}, false},
		{"rgb(300,0,0)", drawing.Color{}, true},
		{"rgba(1,2,3)", drawing.Color{}, true},
		{"blue", drawing.Color{}, true},
		{"#12345", drawing.Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	good := cfg(KindBar)
	if err := good.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	bad := good
	bad.Kind = "pie"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}
	bad = good
	bad.StrokeColor = "nope"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for bad color")
	}
}

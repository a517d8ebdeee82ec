package components

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderChartPlaceholder(t *testing.T) {
	for _, data := range [][]float64{nil, {42}} {
		out := RenderChart(data, 30, 6, "CPU", nil)
		lines := strings.Split(out, "\n")
		if len(lines) != 6 {
			t.Fatalf("expected 6 lines, got %d", len(lines))
		}
		if !strings.Contains(out, PlaceholderText) {
			t.Errorf("expected placeholder for %v, got:\n%s", data, out)
		}
		if strings.ContainsRune(out, chartBlocks[8]) {
			t.Error("expected no bars in placeholder output")
		}
	}
}

func TestRenderChartDrawsBars(t *testing.T) {
	out := RenderChart([]float64{10, 50, 100}, 20, 5, "Memory", func(v float64) string { return "x" })
	if strings.Contains(out, PlaceholderText) {
		t.Error("expected a chart, got the placeholder")
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	top := []rune(lines[1])
	if top[len(top)-1] != chartBlocks[8] {
		t.Errorf("expected the max value to fill the top row, got %q", lines[1])
	}
}

func TestRenderChartConstantSeriesAtMidHeight(t *testing.T) {
	out := RenderChart([]float64{5, 5, 5, 5}, 20, 5, "Users", nil)
	lines := strings.Split(out, "\n")
	// 4 plot rows: the upper two are empty, the lower two are full.
	for i, line := range lines[1:] {
		cells := []rune(line)[chartLabelWidth:]
		last := cells[len(cells)-1]
		wantFull := i >= 2
		if (last == chartBlocks[8]) != wantFull {
			t.Errorf("row %d: expected full=%v, got %q", i, wantFull, line)
		}
	}
}

func TestRenderChartLabels(t *testing.T) {
	format := func(v float64) string { return fmt.Sprintf("%.0f", v) }
	out := RenderChart([]float64{20, 80, 40}, 30, 6, "CPU", format)
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "CPU") || !strings.HasSuffix(lines[0], "now 40") {
		t.Errorf("expected title and current value, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "80") {
		t.Errorf("expected max label on the top row, got %q", lines[1])
	}
	if !strings.Contains(lines[len(lines)-1], "0") {
		t.Errorf("expected min label on the bottom row, got %q", lines[len(lines)-1])
	}
}

func TestSparklineConstantSeries(t *testing.T) {
	got := Sparkline([]float64{3, 3, 3}, 3)
	want := strings.Repeat(string(chartBlocks[4]), 3)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

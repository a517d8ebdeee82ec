package components

import (
	"fmt"
	"math"
	"strings"
)

// PlaceholderText is shown instead of a chart with fewer than two points.
const PlaceholderText = "Insufficient data"

// chartBlocks run from empty (index 0) to a full cell (index 8).
var chartBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const chartLabelWidth = 8

// RenderChart renders a block-character chart of data (oldest first) in a
// width x height character box. The first row holds the title and the
// current value; the top and bottom rows carry the max and min labels.
// format renders values; nil uses FormatCompact.
func RenderChart(data []float64, width, height int, title string, format func(float64) string) string {
	if format == nil {
		format = FormatCompact
	}
	width = max(width, 10)
	height = max(height, 4)
	plotWidth := max(width-chartLabelWidth, 2)
	rows := height - 1

	lines := make([]string, 0, height)
	if len(data) < 2 {
		lines = append(lines, fitLine(title, "", width))
		for i := 0; i < rows; i++ {
			if i == rows/2 {
				lines = append(lines, centerText(PlaceholderText, width))
				continue
			}
			lines = append(lines, strings.Repeat(" ", width))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fitLine(title, "now "+format(data[len(data)-1]), width))
	if len(data) > plotWidth {
		data = data[len(data)-plotWidth:]
	}
	lo, hi := chartScale(data)
	step := (hi - lo) / float64(rows)
	pad := strings.Repeat(" ", plotWidth-len(data))

	for row := rows - 1; row >= 0; row-- {
		label := strings.Repeat(" ", chartLabelWidth)
		switch row {
		case rows - 1:
			label = axisLabel(format(hi))
		case 0:
			label = axisLabel(format(lo))
		}
		bottom := lo + step*float64(row)
		var b strings.Builder
		b.WriteString(label)
		b.WriteString(pad)
		for _, v := range data {
			b.WriteRune(cellBlock(v, bottom, bottom+step))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// chartScale returns the value range the rows span. A constant series gets a
// unit range centred on its value so it sits at mid height. Positive series
// are anchored at zero.
func chartScale(data []float64) (lo, hi float64) {
	lo, hi = data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return lo - 0.5, lo + 0.5
	}
	if lo > 0 {
		lo = 0
	}
	return lo, hi
}

// cellBlock picks the block that shows how much of [bottom, top) v fills.
func cellBlock(v, bottom, top float64) rune {
	switch {
	case v <= bottom:
		return chartBlocks[0]
	case v >= top:
		return chartBlocks[8]
	}
	idx := int(math.Round((v - bottom) / (top - bottom) * 8))
	return chartBlocks[min(max(idx, 0), 8)]
}

func axisLabel(s string) string {
	label := fmt.Sprintf("%7s ", s)
	if len(label) > chartLabelWidth {
		label = label[len(label)-chartLabelWidth:]
	}
	return label
}

// fitLine places left and right at the edges of a width-wide line.
func fitLine(left, right string, width int) string {
	gap := width - len(left) - len(right)
	if gap < 1 {
		return centerText(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// centerText centers s within the given width, padding with spaces.
func centerText(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(s)-pad)
}

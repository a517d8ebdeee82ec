package components

import (
	"fmt"
	"math"
	"strings"
)

// Sparkline draws data (oldest first) right-aligned in width cells, scaled
// between its own min and max. A constant series sits at mid height.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	levels := chartBlocks[1:]
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(data)))
	for _, v := range data {
		idx := len(levels)/2 - 1
		if hi > lo {
			idx = min(int((v-lo)/(hi-lo)*float64(len(levels)-1)), len(levels)-1)
		}
		sb.WriteRune(levels[idx])
	}
	return sb.String()
}

// FormatCompact shortens large values with a K/M/G suffix.
func FormatCompact(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fG", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v == float64(int64(v)):
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

package history

// Trend is the short-term direction of a series.
type Trend int

const (
	TrendStable Trend = iota
	TrendUp
	TrendDown
)

// TrendThreshold is how far the latest value must sit from the recent mean
// before a series counts as moving.
const TrendThreshold = 2.0

const trendWindow = 3

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "stable"
	}
}

// Arrow returns a single-character indicator for the trend.
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// TrendOf compares the latest value with the mean of the last three values.
// Series shorter than three points are stable.
func TrendOf(series []float64) Trend {
	if len(series) < trendWindow {
		return TrendStable
	}
	recent := series[len(series)-trendWindow:]
	var sum float64
	for _, v := range recent {
		sum += v
	}
	mean := sum / float64(len(recent))
	latest := series[len(series)-1]

	switch {
	case latest > mean+TrendThreshold:
		return TrendUp
	case latest < mean-TrendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// Trends computes the trend of every field in the sequence.
func Trends(seq Sequence) map[Field]Trend {
	out := make(map[Field]Trend, len(Fields))
	for _, f := range Fields {
		out[f] = TrendOf(SeriesFor(seq, f))
	}
	return out
}

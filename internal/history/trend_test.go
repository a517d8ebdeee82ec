package history

import "testing"

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   Trend
	}{
		{"empty", nil, TrendStable},
		{"one point", []float64{50}, TrendStable},
		{"two points far apart", []float64{0, 100}, TrendStable},
		{"rising spike", []float64{10, 12, 11, 30}, TrendUp},
		{"falling", []float64{50, 50, 40}, TrendDown},
		{"flat", []float64{5, 5, 5, 5}, TrendStable},
		{"within threshold", []float64{10, 10, 13}, TrendStable},
		{"just over threshold", []float64{10, 10, 14}, TrendUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendOf(tt.series); got != tt.want {
				t.Errorf("TrendOf(%v) = %s, want %s", tt.series, got, tt.want)
			}
		})
	}
}

func TestTrendString(t *testing.T) {
	if TrendUp.String() != "up" || TrendDown.String() != "down" || TrendStable.String() != "stable" {
		t.Error("unexpected trend names")
	}
	if TrendUp.Arrow() == TrendDown.Arrow() {
		t.Error("up and down arrows should differ")
	}
}

func TestTrends(t *testing.T) {
	seq := Sequence{
		{CPUUsage: 10, ActiveUsers: 9},
		{CPUUsage: 12, ActiveUsers: 9},
		{CPUUsage: 11, ActiveUsers: 9},
		{CPUUsage: 30, ActiveUsers: 2},
	}
	got := Trends(seq)
	if got[FieldCPU] != TrendUp {
		t.Errorf("cpu trend = %s, want up", got[FieldCPU])
	}
	if got[FieldUsers] != TrendDown {
		t.Errorf("users trend = %s, want down", got[FieldUsers])
	}
	if got[FieldDisk] != TrendStable {
		t.Errorf("disk trend = %s, want stable", got[FieldDisk])
	}
}

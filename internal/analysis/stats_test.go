package analysis

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.5, 3},
		{2.49, 2},
		{-2.5, -2},
		{-2.51, -3},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := Round1(7.25); got != 7.3 {
		t.Errorf("Round1(7.25) = %v, want 7.3", got)
	}
	if Round1Ptr(nil) != nil {
		t.Error("Round1Ptr(nil) should be nil")
	}
}

func TestAverageAndStdDev(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantAvg float64
		wantStd float64
	}{
		{"empty", nil, 0, 0},
		{"single value", []float64{7}, 7, 0},
		{"textbook sample", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.values); math.Abs(got-tt.wantAvg) > 1e-9 {
				t.Errorf("Average() = %v, want %v", got, tt.wantAvg)
			}
			if got := StdDev(tt.values); math.Abs(got-tt.wantStd) > 1e-9 {
				t.Errorf("StdDev() = %v, want %v", got, tt.wantStd)
			}
		})
	}

	if AverageOrNil(nil) != nil {
		t.Error("AverageOrNil(nil) should be nil")
	}
}

func TestNewTrendMetric(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		baseline  float64
		wantDelta float64
		wantPct   *float64
	}{
		{"unchanged", 42, 42, 0, floatPtr(0)},
		{"zero baseline", 42, 0, 42, nil},
		{"increase", 12, 10, 2, floatPtr(20)},
		{"decrease", 8, 10, -2, floatPtr(-20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTrendMetric(tt.current, tt.baseline)
			if m.Delta != tt.wantDelta {
				t.Errorf("Delta = %v, want %v", m.Delta, tt.wantDelta)
			}
			switch {
			case tt.wantPct == nil && m.DeltaPct != nil:
				t.Errorf("DeltaPct = %v, want nil", *m.DeltaPct)
			case tt.wantPct != nil && m.DeltaPct == nil:
				t.Errorf("DeltaPct = nil, want %v", *tt.wantPct)
			case tt.wantPct != nil && math.Abs(*m.DeltaPct-*tt.wantPct) > 1e-9:
				t.Errorf("DeltaPct = %v, want %v", *m.DeltaPct, *tt.wantPct)
			}
		})
	}
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		name   string
		values DaySeries
		target float64
		want   int
	}{
		{
			name: "miss splits runs",
			values: DaySeries{
				"2024-01-01": 9000, "2024-01-02": 9000, "2024-01-03": 9000,
				"2024-01-04": 1000,
				"2024-01-05": 9000, "2024-01-06": 9000, "2024-01-07": 9000,
			},
			target: 8000,
			want:   3,
		},
		{
			name: "date gap ends a run",
			values: DaySeries{
				"2024-01-01": 9000, "2024-01-02": 9000,
				"2024-01-04": 9000, "2024-01-05": 9000, "2024-01-06": 9000, "2024-01-07": 9000,
			},
			target: 8000,
			want:   4,
		},
		{
			name:   "no hits",
			values: DaySeries{"2024-01-01": 100, "2024-01-02": 200},
			target: 8000,
			want:   0,
		},
		{
			name:   "empty",
			values: DaySeries{},
			target: 8000,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestStreak(tt.values, tt.target); got != tt.want {
				t.Errorf("BestStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	today := mustDay(t, "2024-01-10")
	values := DaySeries{
		"2024-01-06": 9000,
		"2024-01-07": 2000,
		"2024-01-08": 9000,
		"2024-01-09": 9000,
		"2024-01-10": 9000,
	}

	if got := CurrentStreak(values, 8000, today, 120); got != 3 {
		t.Errorf("CurrentStreak() = %d, want 3", got)
	}
	if got := CurrentStreak(values, 8000, today, 2); got != 2 {
		t.Errorf("CurrentStreak() capped = %d, want 2", got)
	}
	if got := CurrentStreak(values, 8000, mustDay(t, "2024-01-11"), 120); got != 0 {
		t.Errorf("CurrentStreak() with no row today = %d, want 0", got)
	}
}

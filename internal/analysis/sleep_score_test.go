package analysis

import (
	"math"
	"testing"
)

var scoreInputs = []struct {
	name string
	in   SleepScoreInput
}{
	{"all zero", SleepScoreInput{}},
	{"balanced", SleepScoreInput{MinutesAsleep: 450, TimeInBed: 480, Efficiency: 93, DeepMinutes: 90, RemMinutes: 110, WakeMinutes: 30}},
	{"poor", SleepScoreInput{MinutesAsleep: 250, TimeInBed: 380, Efficiency: 66, DeepMinutes: 20, RemMinutes: 25, WakeMinutes: 130}},
	{"oversleep", SleepScoreInput{MinutesAsleep: 720, TimeInBed: 740, Efficiency: 98, DeepMinutes: 300, RemMinutes: 300, WakeMinutes: 20}},
	{"missing time in bed", SleepScoreInput{MinutesAsleep: 400, Efficiency: 90, DeepMinutes: 60, RemMinutes: 80, WakeMinutes: 40}},
	{"negative garbage", SleepScoreInput{MinutesAsleep: -30, TimeInBed: -10, Efficiency: 140, DeepMinutes: -5, RemMinutes: -5, WakeMinutes: -20}},
}

func TestSleepScoreBreakdownSums(t *testing.T) {
	for _, mode := range []ScoreMode{ModeFitbit, ModeRecovery} {
		for _, goal := range []float64{0, 6, 8, 9.5} {
			for _, tt := range scoreInputs {
				t.Run(string(mode)+"/"+tt.name, func(t *testing.T) {
					b := SleepScoreDetailed(tt.in, goal, mode)
					if b.Duration+b.Depth+b.Restoration != b.Total {
						t.Errorf("components %d+%d+%d != total %d", b.Duration, b.Depth, b.Restoration, b.Total)
					}
					if b.Total < 0 || b.Total > 100 {
						t.Errorf("total %d out of range", b.Total)
					}
					if got := SleepScore(tt.in, goal, mode); got != b.Total {
						t.Errorf("SleepScore() = %d, detailed total = %d", got, b.Total)
					}
				})
			}
		}
	}
}

func TestSleepScoreAllZero(t *testing.T) {
	b := SleepScoreDetailed(SleepScoreInput{}, 8, ModeFitbit)
	if b.Depth != 0 {
		t.Errorf("Depth = %d, want 0", b.Depth)
	}
	if b.Total < 0 || math.IsNaN(float64(b.Total)) {
		t.Errorf("Total = %d, want finite non-negative", b.Total)
	}
}

func TestSleepScorePoorBelowBalanced(t *testing.T) {
	balanced := scoreInputs[1].in
	poor := scoreInputs[2].in

	for _, mode := range []ScoreMode{ModeFitbit, ModeRecovery} {
		b, p := SleepScore(balanced, 8, mode), SleepScore(poor, 8, mode)
		if p >= b {
			t.Errorf("%s: poor score %d should be below balanced %d", mode, p, b)
		}
	}
}

func TestSleepScoreModes(t *testing.T) {
	for _, mode := range []ScoreMode{ModeFitbit, ModeRecovery} {
		w := mode.Weights()
		if w.Duration+w.Depth+w.Restoration != 100 {
			t.Errorf("%s weights sum to %v, want 100", mode, w.Duration+w.Depth+w.Restoration)
		}
	}

	in := SleepScoreInput{MinutesAsleep: 420, TimeInBed: 480, Efficiency: 88, DeepMinutes: 80, RemMinutes: 90, WakeMinutes: 60}
	fitbit := SleepScoreDetailed(in, 8, ModeFitbit)
	want := SleepScoreBreakdown{Duration: 44, Depth: 20, Restoration: 22, Total: 86}
	if fitbit != want {
		t.Errorf("fitbit breakdown = %+v, want %+v", fitbit, want)
	}

	recovery := SleepScoreDetailed(in, 8, ModeRecovery)
	if recovery.Total == fitbit.Total {
		t.Errorf("recovery and fitbit totals both %d, want different", fitbit.Total)
	}
}

func TestSleepScoreDefaultGoal(t *testing.T) {
	in := scoreInputs[1].in
	for _, goal := range []float64{0, -3, math.NaN()} {
		if got, want := SleepScore(in, goal, ModeFitbit), SleepScore(in, DefaultSleepGoalHours, ModeFitbit); got != want {
			t.Errorf("goal %v scored %d, want default-goal score %d", goal, got, want)
		}
	}
}

func TestParseScoreMode(t *testing.T) {
	tests := []struct {
		in   string
		want ScoreMode
	}{
		{"fitbit", ModeFitbit},
		{"recovery", ModeRecovery},
		{" Recovery ", ModeRecovery},
		{"", ModeFitbit},
		{"unknown", ModeFitbit},
	}

	for _, tt := range tests {
		if got := ParseScoreMode(tt.in); got != tt.want {
			t.Errorf("ParseScoreMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package analysis

import (
	"testing"

	"healthdash/internal/store"
)

func TestBuildGoals(t *testing.T) {
	goals := store.WeeklyGoals{
		UserID:              "u1",
		Zone2TargetMinutes:  180,
		AvgSleepTargetHours: 7,
		AvgStepsTarget:      8500,
		SleepScoreMode:      "fitbit",
	}

	tests := []struct {
		name         string
		summary      WeeklySummary
		wantPercents []int
		wantNudges   []string
	}{
		{
			name:         "behind on everything",
			summary:      WeeklySummary{TotalZone2Minutes: 90, AverageSleepHours: 6.5, AverageSteps: 6500},
			wantPercents: []int{50, 93, 76},
			wantNudges: []string{
				"Need 90 more Zone 2 minutes this week. Try 2 to 3 brisk sessions.",
				"Add about 30 minutes/night to hit your sleep goal.",
				"Increase by about 2,000 steps/day to reach your weekly step target.",
			},
		},
		{
			name:         "on track within tolerances",
			summary:      WeeklySummary{TotalZone2Minutes: 200, AverageSleepHours: 6.9, AverageSteps: 8300},
			wantPercents: []int{100, 99, 98},
			wantNudges:   []string{"All weekly goals are on track. Keep your routine consistent."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildGoals(tt.summary, goals)
			if got.Goals != goals {
				t.Errorf("Goals = %+v, want %+v", got.Goals, goals)
			}
			if len(got.Progress) != 3 {
				t.Fatalf("got %d progress entries, want 3", len(got.Progress))
			}
			for i, p := range got.Progress {
				if p.Percent != tt.wantPercents[i] {
					t.Errorf("%s percent = %d, want %d", p.Label, p.Percent, tt.wantPercents[i])
				}
				if p.Remaining < 0 {
					t.Errorf("%s remaining = %v, want >= 0", p.Label, p.Remaining)
				}
			}
			if len(got.Nudges) != len(tt.wantNudges) {
				t.Fatalf("Nudges = %v, want %v", got.Nudges, tt.wantNudges)
			}
			for i := range tt.wantNudges {
				if got.Nudges[i] != tt.wantNudges[i] {
					t.Errorf("Nudges[%d] = %q, want %q", i, got.Nudges[i], tt.wantNudges[i])
				}
			}
		})
	}
}

func TestBuildGoalsZeroTargets(t *testing.T) {
	got := BuildGoals(WeeklySummary{TotalZone2Minutes: 50}, store.WeeklyGoals{})
	for _, p := range got.Progress {
		if p.Percent != 0 {
			t.Errorf("%s percent = %d, want 0 for zero target", p.Label, p.Percent)
		}
	}
}

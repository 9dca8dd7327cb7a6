package analysis

import (
	"testing"
	"time"

	"healthdash/internal/store"
)

func stepDay(t *testing.T, key string, steps int) store.DailyActivity {
	return store.DailyActivity{UserID: "u1", Date: mustDay(t, key), Steps: steps}
}

func TestWeeklyPacing(t *testing.T) {
	// Tuesday, so Sunday..Tuesday is 3 days elapsed
	now := time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		days       []store.DailyActivity
		wantTotal  int
		wantGap    int
		wantStatus string
	}{
		{
			name: "behind",
			days: []store.DailyActivity{
				stepDay(t, "2024-01-07", 6000),
				stepDay(t, "2024-01-08", 7000),
				stepDay(t, "2024-01-09", 7000),
			},
			wantTotal:  20000,
			wantGap:    -4000,
			wantStatus: PaceBehind,
		},
		{
			name: "within tolerance",
			days: []store.DailyActivity{
				stepDay(t, "2024-01-07", 8000),
				stepDay(t, "2024-01-08", 8000),
				stepDay(t, "2024-01-09", 7000),
			},
			wantTotal:  23000,
			wantGap:    -1000,
			wantStatus: PaceOnTrack,
		},
		{
			name: "ahead ignores last week",
			days: []store.DailyActivity{
				stepDay(t, "2024-01-06", 30000),
				stepDay(t, "2024-01-07", 12000),
				stepDay(t, "2024-01-08", 12000),
				stepDay(t, "2024-01-09", 4000),
			},
			wantTotal:  28000,
			wantGap:    4000,
			wantStatus: PaceAhead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildStepInsights(StepInput{Days: tt.days, DailyTarget: 8000}, now).WeeklyPacing
			if got.DaysElapsed != 3 {
				t.Errorf("DaysElapsed = %d, want 3", got.DaysElapsed)
			}
			if got.ExpectedByToday != 24000 {
				t.Errorf("ExpectedByToday = %d, want 24000", got.ExpectedByToday)
			}
			if got.TargetTotal != 56000 {
				t.Errorf("TargetTotal = %d, want 56000", got.TargetTotal)
			}
			if got.CurrentTotal != tt.wantTotal {
				t.Errorf("CurrentTotal = %d, want %d", got.CurrentTotal, tt.wantTotal)
			}
			if got.Gap != tt.wantGap {
				t.Errorf("Gap = %d, want %d", got.Gap, tt.wantGap)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestStepCoachingAndPlan(t *testing.T) {
	now := time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)
	days := []store.DailyActivity{
		stepDay(t, "2024-01-07", 6000),
		stepDay(t, "2024-01-08", 7000),
		stepDay(t, "2024-01-09", 7000),
	}

	got := BuildStepInsights(StepInput{Days: days, DailyTarget: 8000}, now)

	if got.TodaySteps != 7000 {
		t.Errorf("TodaySteps = %d, want 7000", got.TodaySteps)
	}
	if got.Coaching.TodayTarget != 8000 {
		t.Errorf("Coaching.TodayTarget = %d, want 8000", got.Coaching.TodayTarget)
	}
	if want := "Need 1,000 more steps to hit today's coaching target."; got.Coaching.Message != want {
		t.Errorf("Coaching.Message = %q, want %q", got.Coaching.Message, want)
	}

	wantDays := []string{"Wed", "Thu", "Fri", "Sat"}
	if len(got.ProgressionPlan) != len(wantDays) {
		t.Fatalf("ProgressionPlan has %d days, want %d", len(got.ProgressionPlan), len(wantDays))
	}
	for i, step := range got.ProgressionPlan {
		if step.Day != wantDays[i] || step.Target != 9000 {
			t.Errorf("plan[%d] = %+v, want {%s 9000}", i, step, wantDays[i])
		}
	}
}

func TestStepCoachingMessages(t *testing.T) {
	now := time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		today int
		want  string
	}{
		{"big gap prompts a walk", 2000, "Need 6,000 more steps today. Add a 20-30 minute walk."},
		{"target met", 12000, "You are on track. Keep your usual walking routine."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := []store.DailyActivity{
				stepDay(t, "2024-01-07", 20000),
				stepDay(t, "2024-01-08", 20000),
				stepDay(t, "2024-01-09", tt.today),
			}
			got := BuildStepInsights(StepInput{Days: days, DailyTarget: 8000}, now).Coaching
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestStepStreaks(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	days := []store.DailyActivity{
		stepDay(t, "2024-01-01", 9000),
		stepDay(t, "2024-01-02", 9000),
		stepDay(t, "2024-01-03", 9000),
		stepDay(t, "2024-01-04", 9000),
		stepDay(t, "2024-01-05", 3000),
		stepDay(t, "2024-01-06", 9000),
		stepDay(t, "2024-01-07", 9000),
		stepDay(t, "2024-01-08", 9000),
		stepDay(t, "2024-01-09", 9000),
		stepDay(t, "2024-01-10", 9000),
	}

	got := BuildStepInsights(StepInput{Days: days, DailyTarget: 8000}, now).Streaks
	if got.Current != 5 {
		t.Errorf("Current = %d, want 5", got.Current)
	}
	if got.Best != 5 {
		t.Errorf("Best = %d, want 5", got.Best)
	}
	if got.LastBreak == nil || *got.LastBreak != "2024-01-05" {
		t.Errorf("LastBreak = %v, want 2024-01-05", got.LastBreak)
	}
}

func TestStepDistributionAndPeaks(t *testing.T) {
	now := time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)
	log := func(hour, steps, minutes int) store.ActivityLog {
		start := time.Date(2024, 1, 9, hour, 0, 0, 0, time.UTC)
		return store.ActivityLog{UserID: "u1", Date: Today(start), StartTime: start, DurationMinutes: minutes, Steps: intPtr(steps)}
	}
	logs := []store.ActivityLog{
		log(8, 3000, 30),
		log(13, 1000, 10),
		log(19, 1000, 20),
		log(20, 500, 10),
		{UserID: "u1", StartTime: now, DurationMinutes: 15},
	}

	got := BuildStepInsights(StepInput{Logs: logs, DailyTarget: 8000}, now)

	wantDist := StepDistribution{Morning: 55, Afternoon: 18, Evening: 27}
	if got.Distribution != wantDist {
		t.Errorf("Distribution = %+v, want %+v", got.Distribution, wantDist)
	}

	if len(got.PeakWindows) != 3 {
		t.Fatalf("PeakWindows has %d entries, want 3", len(got.PeakWindows))
	}
	top := got.PeakWindows[0]
	if top.Steps != 3000 || top.Pace != 100 || top.Label != "Tue 8:00 AM" {
		t.Errorf("top window = %+v, want 3000 steps at 100/min labelled Tue 8:00 AM", top)
	}

	empty := BuildStepInsights(StepInput{DailyTarget: 8000}, now)
	if empty.Distribution != (StepDistribution{}) {
		t.Errorf("empty Distribution = %+v, want zeros", empty.Distribution)
	}
	if empty.PeakWindows == nil {
		t.Error("empty PeakWindows should be a non-nil slice")
	}
}

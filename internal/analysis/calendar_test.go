package analysis

import (
	"testing"
	"time"

	"healthdash/internal/store"
)

func TestMonthGrid(t *testing.T) {
	tests := []struct {
		month    string
		wantFrom string
		wantTo   string
		wantDays int
	}{
		{"2024-02-15", "2024-01-28", "2024-03-02", 35},
		{"2024-09-01", "2024-09-01", "2024-10-05", 35},
		{"2026-02-01", "2026-02-01", "2026-02-28", 28},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			w := MonthGrid(mustDay(t, tt.month))
			if DayKey(w.From) != tt.wantFrom || DayKey(w.To) != tt.wantTo {
				t.Errorf("MonthGrid() = %s..%s, want %s..%s", DayKey(w.From), DayKey(w.To), tt.wantFrom, tt.wantTo)
			}
			if w.Days() != tt.wantDays {
				t.Errorf("Days() = %d, want %d", w.Days(), tt.wantDays)
			}
		})
	}
}

func TestBuildCalendar(t *testing.T) {
	now := time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC)
	day := mustDay(t, "2024-02-14")
	start := day.Add(7 * time.Hour)

	rows := DailyRows{
		Activity: []store.DailyActivity{{Date: day, Steps: 9000, ActiveMinutes: 60, SedentaryMinutes: 600}},
		Sleep:    []store.DailySleep{{Date: day, MinutesAsleep: 420, TimeInBed: 450, Efficiency: 90, WakeMinutes: intPtr(30)}},
		Zones:    []store.DailyHeartZones{{Date: day, Zone2Minutes: 25, RestingHeartRate: intPtr(57)}},
		Logs: []store.ActivityLog{
			{ID: "late", StartTime: start.Add(10 * time.Hour), Name: "Ride"},
			{ID: "early", StartTime: start, Name: "Walk"},
		},
	}

	got := BuildCalendar(day, rows, rows, 8, ModeFitbit, now)

	if got.Month != "2024-02" || got.StartDate != "2024-01-28" || got.EndDate != "2024-03-02" {
		t.Errorf("header = %s %s..%s", got.Month, got.StartDate, got.EndDate)
	}
	if len(got.Days) != 35 || len(got.Weeks()) != 5 {
		t.Fatalf("got %d days in %d weeks, want 35 in 5", len(got.Days), len(got.Weeks()))
	}

	var valentine *DayDashboard
	for i := range got.Days {
		if got.Days[i].Date == "2024-02-14" {
			valentine = &got.Days[i]
		}
		if got.Days[i].Activities == nil {
			t.Fatalf("day %s has nil activities", got.Days[i].Date)
		}
	}
	if valentine == nil {
		t.Fatal("2024-02-14 missing from grid")
	}
	if valentine.Steps != 9000 || valentine.Zone2Minutes != 25 || valentine.SleepMinutes != 420 {
		t.Errorf("day = %+v", *valentine)
	}
	if valentine.SleepScore == nil || valentine.SleepScoreBreakdown == nil || *valentine.SleepScore != valentine.SleepScoreBreakdown.Total {
		t.Errorf("sleep score not attached: %+v", valentine.SleepScoreBreakdown)
	}
	if !valentine.HasActivity || len(valentine.Activities) != 2 || valentine.Activities[0].ID != "early" {
		t.Errorf("activities = %+v, want early then late", valentine.Activities)
	}

	ws := got.WeeklySummary
	if ws.TotalZone2Minutes != 25 || ws.Zone2DaysCount != 1 || ws.AverageSteps != 9000 || ws.AverageSleepHours != 7 || ws.AverageSedentaryHours != 10 {
		t.Errorf("WeeklySummary = %+v", ws)
	}
}

func TestBuildWeeklySummaryExcludesMissingDays(t *testing.T) {
	today := mustDay(t, "2024-02-14")
	rows := DailyRows{
		Activity: []store.DailyActivity{
			{Date: today, Steps: 10000},
			{Date: AddDays(today, -2), Steps: 6000},
			{Date: AddDays(today, -9), Steps: 50000},
		},
		Zones: []store.DailyHeartZones{
			{Date: today, Zone2Minutes: 30},
			{Date: AddDays(today, -1), Zone2Minutes: 0},
		},
	}

	got := BuildWeeklySummary(rows, today)
	if got.AverageSteps != 8000 {
		t.Errorf("AverageSteps = %d, want 8000", got.AverageSteps)
	}
	if got.TotalZone2Minutes != 30 || got.Zone2DaysCount != 1 {
		t.Errorf("zone2 = %d over %d days, want 30 over 1", got.TotalZone2Minutes, got.Zone2DaysCount)
	}
	if got.AverageSleepHours != 0 {
		t.Errorf("AverageSleepHours = %v, want 0", got.AverageSleepHours)
	}
}

package analysis

import (
	"math"
	"testing"
	"time"

	"healthdash/internal/store"
)

func TestBuildRHRZone2InsightsStrained(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	today := Today(now)

	var zones []store.DailyHeartZones
	for i := 0; i < RHRHistoryDays; i++ {
		rhr, zone2 := 56, 0
		if i == 0 {
			rhr = 62
		}
		if i < 3 {
			zone2 = 50
		}
		zones = append(zones, store.DailyHeartZones{Date: AddDays(today, -i), Zone2Minutes: zone2, RestingHeartRate: intPtr(rhr)})
	}
	var sleep []store.DailySleep
	for i := 0; i < 7; i++ {
		sleep = append(sleep, store.DailySleep{Date: AddDays(today, -i), MinutesAsleep: 360})
	}

	got := BuildRHRZone2Insights(RHRInput{Zones: zones, Sleep: sleep}, now)

	b := got.Baseline
	if b.TodayRHR == nil || *b.TodayRHR != 62 {
		t.Errorf("TodayRHR = %v, want 62", b.TodayRHR)
	}
	if b.RHR30d == nil || math.Abs(*b.RHR30d-56.2) > 1e-9 {
		t.Errorf("RHR30d = %v, want 56.2", b.RHR30d)
	}
	if b.RHR7d == nil || math.Abs(*b.RHR7d-56.9) > 1e-9 {
		t.Errorf("RHR7d = %v, want 56.9", b.RHR7d)
	}
	if b.DeltaVs30d == nil || math.Abs(*b.DeltaVs30d-5.8) > 1e-9 {
		t.Errorf("DeltaVs30d = %v, want 5.8", b.DeltaVs30d)
	}
	if b.Status != RHRElevated {
		t.Errorf("Status = %q, want %q", b.Status, RHRElevated)
	}

	r := got.Readiness
	if r.Score != 30 || r.Label != "Low" {
		t.Errorf("Readiness = %d %q, want 30 Low", r.Score, r.Label)
	}
	wantReasons := []string{
		"RHR is up 5.8 bpm vs 30d baseline.",
		"Recent sleep average is 6.0h.",
		"High Zone2 load in the last 3 days.",
	}
	if len(r.Reasons) != len(wantReasons) {
		t.Fatalf("Reasons = %v, want %v", r.Reasons, wantReasons)
	}
	for i := range wantReasons {
		if r.Reasons[i] != wantReasons[i] {
			t.Errorf("Reasons[%d] = %q, want %q", i, r.Reasons[i], wantReasons[i])
		}
	}

	p := got.Planner
	if p.CompletedZone2Days != 3 || p.RemainingDays != 4 {
		t.Errorf("Planner completed/remaining = %d/%d, want 3/4", p.CompletedZone2Days, p.RemainingDays)
	}
	wantSessions := []Zone2Session{{Day: "Thu", Minutes: 20}, {Day: "Fri", Minutes: 20}}
	if len(p.SuggestedSessions) != len(wantSessions) {
		t.Fatalf("SuggestedSessions = %+v, want %+v", p.SuggestedSessions, wantSessions)
	}
	for i := range wantSessions {
		if p.SuggestedSessions[i] != wantSessions[i] {
			t.Errorf("SuggestedSessions[%d] = %+v, want %+v", i, p.SuggestedSessions[i], wantSessions[i])
		}
	}
}

func TestBuildRHRZone2InsightsNoData(t *testing.T) {
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	got := BuildRHRZone2Insights(RHRInput{}, now)

	if got.Baseline.Status != RHRUnknown || got.Baseline.RHR30d != nil || got.Baseline.DeltaVs30d != nil {
		t.Errorf("Baseline = %+v, want unknown with nil values", got.Baseline)
	}
	if got.Readiness.Score != 100 || got.Readiness.Label != "High" {
		t.Errorf("Readiness = %+v, want 100 High", got.Readiness)
	}
	if len(got.Readiness.Reasons) != 1 || got.Readiness.Reasons[0] != "RHR, sleep, and recent load look balanced." {
		t.Errorf("Reasons = %v, want balanced default", got.Readiness.Reasons)
	}
	if n := len(got.Planner.SuggestedSessions); n != 4 {
		t.Fatalf("SuggestedSessions has %d entries, want 4 (capped by days left in week)", n)
	}
	if got.Planner.SuggestedSessions[0].Minutes != 30 {
		t.Errorf("session minutes = %d, want 30", got.Planner.SuggestedSessions[0].Minutes)
	}
}

func TestRHRStatus(t *testing.T) {
	tests := []struct {
		delta *float64
		want  string
	}{
		{nil, RHRUnknown},
		{floatPtr(-2), RHRImproving},
		{floatPtr(-1.9), RHRStable},
		{floatPtr(1.9), RHRStable},
		{floatPtr(2), RHRElevated},
	}

	for _, tt := range tests {
		if got := rhrStatus(tt.delta); got != tt.want {
			t.Errorf("rhrStatus(%v) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestBuildRecoverySignals(t *testing.T) {
	today := mustDay(t, "2024-01-14")
	var rows []store.DailyRecovery
	for i := 13; i >= 0; i-- {
		vo2, hrv := 40.0, 50.0
		if i < 7 {
			vo2, hrv = 41, 40
		}
		row := store.DailyRecovery{Date: AddDays(today, -i), Vo2Max: floatPtr(vo2), HrvRmssd: floatPtr(hrv)}
		if i == 0 {
			row.Spo2Avg = floatPtr(93)
		}
		rows = append(rows, row)
	}
	rows = append(rows, store.DailyRecovery{Date: AddDays(today, -60), BreathingRate: floatPtr(15)})

	got := BuildRecoverySignals(rows, today)

	if !got.HasAnyData || got.DateLabel != "2024-01-14" {
		t.Errorf("HasAnyData/DateLabel = %v/%q, want true/2024-01-14", got.HasAnyData, got.DateLabel)
	}
	if got.Vo2Max.Delta7d == nil || *got.Vo2Max.Delta7d != 1 {
		t.Errorf("Vo2Max.Delta7d = %v, want 1", got.Vo2Max.Delta7d)
	}
	if got.BreathingRate.Value != nil {
		t.Errorf("BreathingRate outside the window should be ignored, got %v", *got.BreathingRate.Value)
	}
	if got.Spo2Avg.Delta7d != nil {
		t.Errorf("Spo2Avg.Delta7d = %v, want nil without a prior week", *got.Spo2Avg.Delta7d)
	}

	wantNotes := []string{
		"VO2 max improved by 1.0 over prior week.",
		"HRV dropped by 10.0ms vs prior week. Consider lighter training.",
		"Average SpO2 is 93%. Confirm sensor fit and monitor trend.",
	}
	if len(got.Notes) != len(wantNotes) {
		t.Fatalf("Notes = %v, want %v", got.Notes, wantNotes)
	}
	for i := range wantNotes {
		if got.Notes[i] != wantNotes[i] {
			t.Errorf("Notes[%d] = %q, want %q", i, got.Notes[i], wantNotes[i])
		}
	}
}

func TestBuildRecoverySignalsEmpty(t *testing.T) {
	got := BuildRecoverySignals(nil, mustDay(t, "2024-01-14"))

	if got.HasAnyData || got.DateLabel != "n/a" {
		t.Errorf("HasAnyData/DateLabel = %v/%q, want false/n/a", got.HasAnyData, got.DateLabel)
	}
	if len(got.Metrics()) != 7 {
		t.Errorf("Metrics() has %d entries, want 7", len(got.Metrics()))
	}
	if len(got.Notes) != 1 || got.Notes[0] != "No premium biomarker data returned yet. Reconnect Fitbit with expanded scopes, then sync recent days." {
		t.Errorf("Notes = %v, want reconnect prompt", got.Notes)
	}
}

func TestBuildRecoverySignalsSparseRowsCompareByCount(t *testing.T) {
	// Readings every other day. The last seven readings span two calendar
	// weeks, and the prior block is the seven readings before them.
	today := mustDay(t, "2024-01-30")
	var rows []store.DailyRecovery
	for i := 14; i >= 0; i-- {
		hrv := 40.0
		if i < 7 {
			hrv = 50
		}
		rows = append(rows, store.DailyRecovery{Date: AddDays(today, -2*i), HrvRmssd: floatPtr(hrv)})
	}

	got := BuildRecoverySignals(rows, today)

	if got.HrvRmssd.Value == nil || *got.HrvRmssd.Value != 50 {
		t.Fatalf("HrvRmssd.Value = %v, want 50", got.HrvRmssd.Value)
	}
	if got.HrvRmssd.Delta7d == nil || *got.HrvRmssd.Delta7d != 10 {
		t.Errorf("HrvRmssd.Delta7d = %v, want 10", got.HrvRmssd.Delta7d)
	}
}

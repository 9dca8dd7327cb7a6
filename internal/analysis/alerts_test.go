package analysis

import (
	"testing"
	"time"

	"healthdash/internal/store"
)

func defaultPrefs() store.AlertPreference {
	return store.AlertPreference{
		UserID:            "u1",
		MinSleepHours:     6.5,
		MinAvgSteps:       7000,
		MinZone2Days:      3,
		MaxRestingHRDelta: 4,
		AlertsEnabled:     true,
	}
}

func candidateByType(cs []AlertCandidate, typ string) *AlertCandidate {
	for i := range cs {
		if cs[i].Type == typ {
			return &cs[i]
		}
	}
	return nil
}

func TestLowSleepAlertMessage(t *testing.T) {
	now := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	today := Today(now)

	var in AlertInputs
	for i := 0; i < 7; i++ {
		in.Sleep = append(in.Sleep, store.DailySleep{Date: AddDays(today, -i), MinutesAsleep: 348})
		in.Activity = append(in.Activity, store.DailyActivity{Date: AddDays(today, -i), Steps: 9000})
		in.Zones = append(in.Zones, store.DailyHeartZones{Date: AddDays(today, -i), Zone2Minutes: 20})
	}

	got := EvaluateAlertRules(BuildAlertSnapshot(in, now), defaultPrefs())

	c := candidateByType(got, AlertLowSleep)
	if c == nil {
		t.Fatalf("low_sleep not raised: %+v", got)
	}
	if want := "Average sleep is 5.8h, below target 6.5h."; c.Message != want {
		t.Errorf("Message = %q, want %q", c.Message, want)
	}
	if c.Severity != SeverityMedium {
		t.Errorf("Severity = %q, want medium", c.Severity)
	}
	if candidateByType(got, AlertPoorSleepStreak) == nil {
		t.Error("poor_sleep_streak should fire for three short nights")
	}
	for _, typ := range []string{AlertLowSteps, AlertLowZone2Days, AlertElevatedRHR, AlertCombinedRecoveryRisk} {
		if candidateByType(got, typ) != nil {
			t.Errorf("%s should not fire", typ)
		}
	}
}

func TestRecoveryRiskAlerts(t *testing.T) {
	now := time.Date(2024, 1, 20, 6, 0, 0, 0, time.UTC)
	today := Today(now)

	var in AlertInputs
	for i := 0; i < 17; i++ {
		rhr := 56
		if i < 3 {
			rhr = 62
		}
		in.Zones = append(in.Zones, store.DailyHeartZones{Date: AddDays(today, -i), Zone2Minutes: 30, RestingHeartRate: intPtr(rhr)})
	}
	for i := 0; i < 7; i++ {
		in.Sleep = append(in.Sleep, store.DailySleep{Date: AddDays(today, -i), MinutesAsleep: 360})
		in.Activity = append(in.Activity, store.DailyActivity{Date: AddDays(today, -i), Steps: 5000})
	}

	snap := BuildAlertSnapshot(in, now)
	if snap.WeeklyZone2 != 210 || snap.Zone2Days != 7 {
		t.Errorf("weekly zone2 = %d over %d days, want 210 over 7", snap.WeeklyZone2, snap.Zone2Days)
	}
	if snap.CurrentRHR != 62 || snap.BaselineRHR != 56 {
		t.Errorf("RHR current/baseline = %v/%v, want 62/56", snap.CurrentRHR, snap.BaselineRHR)
	}

	got := EvaluateAlertRules(snap, defaultPrefs())

	want := map[string]struct {
		severity Severity
		message  string
	}{
		AlertLowSleep:             {SeverityMedium, "Average sleep is 6.0h, below target 6.5h."},
		AlertLowSteps:             {SeverityMedium, "Average steps are 5,000, below target 7,000."},
		AlertElevatedRHR:          {SeverityHigh, "Resting HR is up by 6.0 bpm vs baseline. Prioritize recovery today."},
		AlertCombinedRecoveryRisk: {SeverityHigh, "RHR elevated + low sleep + high Zone2 load. Consider a lighter recovery day."},
		AlertPoorSleepStreak:      {SeverityHigh, "Three consecutive low-sleep nights detected. Schedule a recovery night."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates %+v, want %d", len(got), got, len(want))
	}
	for _, c := range got {
		w, ok := want[c.Type]
		if !ok {
			t.Errorf("unexpected candidate %+v", c)
			continue
		}
		if c.Severity != w.severity || c.Message != w.message {
			t.Errorf("%s = %q %q, want %q %q", c.Type, c.Severity, c.Message, w.severity, w.message)
		}
	}
}

func TestSleepPatternAlerts(t *testing.T) {
	now := time.Date(2024, 1, 14, 6, 0, 0, 0, time.UTC)
	today := Today(now)

	var in AlertInputs
	for i := 0; i < 7; i++ {
		in.Sleep = append(in.Sleep, night(AddDays(today, -i), 480, 23, 30, 60))
	}
	for i := 7; i < 14; i++ {
		in.Sleep = append(in.Sleep, night(AddDays(today, -i), 480, 22, 30, 90))
	}
	for i := 0; i < 7; i++ {
		in.Zones = append(in.Zones, store.DailyHeartZones{Date: AddDays(today, -i), Zone2Minutes: 25})
	}

	got := EvaluateAlertRules(BuildAlertSnapshot(in, now), defaultPrefs())

	if c := candidateByType(got, AlertBedtimeDrift); c == nil || c.Message != "Bedtime drifted later by 60 minutes vs prior week." {
		t.Errorf("bedtime_drift = %+v", c)
	}
	if c := candidateByType(got, AlertRemDrop); c == nil || c.Message != "REM sleep dropped by 33% vs prior week." {
		t.Errorf("rem_drop = %+v", c)
	}
	if len(got) != 2 {
		t.Errorf("got %d candidates %+v, want only the two sleep pattern alerts", len(got), got)
	}
}

func TestAlertRulesWithNoData(t *testing.T) {
	now := time.Date(2024, 1, 14, 6, 0, 0, 0, time.UTC)
	got := EvaluateAlertRules(BuildAlertSnapshot(AlertInputs{}, now), defaultPrefs())

	if len(got) != 1 || got[0].Type != AlertLowZone2Days {
		t.Fatalf("got %+v, want only low_zone2_days", got)
	}
	if want := "Zone 2 activity logged on 0 day(s); target is 3 day(s)."; got[0].Message != want {
		t.Errorf("Message = %q, want %q", got[0].Message, want)
	}
	if got[0].Severity != SeverityLow {
		t.Errorf("Severity = %q, want low", got[0].Severity)
	}
}

func TestAlertRulesAreIndependent(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range AlertRules {
		if seen[r.Type] {
			t.Errorf("duplicate rule %s", r.Type)
		}
		seen[r.Type] = true
		if c := r.Evaluate(AlertSnapshot{}, store.AlertPreference{}); c != nil && c.Type != r.Type {
			t.Errorf("rule %s produced candidate of type %s", r.Type, c.Type)
		}
	}
	if len(AlertRules) != 8 {
		t.Errorf("got %d rules, want 8", len(AlertRules))
	}
}

package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"healthdash/internal/store"
)

// Severity ranks an alert
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert rule types
const (
	AlertLowSleep             = "low_sleep"
	AlertLowSteps             = "low_steps"
	AlertLowZone2Days         = "low_zone2_days"
	AlertElevatedRHR          = "elevated_rhr"
	AlertCombinedRecoveryRisk = "combined_recovery_risk"
	AlertPoorSleepStreak      = "poor_sleep_streak"
	AlertBedtimeDrift         = "bedtime_drift"
	AlertRemDrop              = "rem_drop"
)

// Alert look-back windows in days, ending today
const (
	AlertSleepHistoryDays = 21
	AlertZoneHistoryDays  = 17
	AlertWeekDays         = 7
	highZone2LoadMinutes  = 180
	remDropRatio          = 0.85
)

// AlertInputs holds the raw rows the alert rules read
type AlertInputs struct {
	Activity []store.DailyActivity   // last 7 days
	Zones    []store.DailyHeartZones // last 17 days
	Sleep    []store.DailySleep      // last 21 days
}

// AlertSnapshot is every aggregate the rules need, computed once
type AlertSnapshot struct {
	DayKey         string
	AvgSleepHours  float64
	AvgSteps       float64
	Zone2Days      int
	WeeklyZone2    int
	CurrentRHR     float64 // last 3 days
	BaselineRHR    float64 // the 14 days ending 3 days ago
	RecentNights   []int   // minutes asleep, newest first, at most 3
	CurrentBedtime float64
	PriorBedtime   float64
	CurrentRem     float64
	PriorRem       float64
}

// AlertCandidate is a triggered rule awaiting persistence
type AlertCandidate struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// AlertRule is one independent alert check
type AlertRule struct {
	Type     string
	Evaluate func(AlertSnapshot, store.AlertPreference) *AlertCandidate
}

// AlertRules is the full rule set in evaluation order
var AlertRules = []AlertRule{
	{AlertLowSleep, lowSleepRule},
	{AlertLowSteps, lowStepsRule},
	{AlertLowZone2Days, lowZone2DaysRule},
	{AlertElevatedRHR, elevatedRHRRule},
	{AlertCombinedRecoveryRisk, combinedRecoveryRiskRule},
	{AlertPoorSleepStreak, poorSleepStreakRule},
	{AlertBedtimeDrift, bedtimeDriftRule},
	{AlertRemDrop, remDropRule},
}

// BuildAlertSnapshot computes the rule aggregates for today
func BuildAlertSnapshot(in AlertInputs, now time.Time) AlertSnapshot {
	today := Today(now)
	week, priorWeek := WindowedDelta(today, AlertWeekDays)
	currentRHR := NewWindow(today, 3)
	baselineRHR := Window{From: AddDays(today, -16), To: AddDays(today, -3)}

	snap := AlertSnapshot{DayKey: DayKey(today)}

	var weekSleep, steps, curHR, baseHR []float64
	for _, a := range in.Activity {
		if week.Contains(a.Date) {
			steps = append(steps, float64(a.Steps))
		}
	}
	for _, z := range in.Zones {
		if week.Contains(z.Date) {
			snap.WeeklyZone2 += z.Zone2Minutes
			if z.Zone2Minutes > 0 {
				snap.Zone2Days++
			}
		}
		if z.RestingHeartRate == nil {
			continue
		}
		if currentRHR.Contains(z.Date) {
			curHR = append(curHR, float64(*z.RestingHeartRate))
		}
		if baselineRHR.Contains(z.Date) {
			baseHR = append(baseHR, float64(*z.RestingHeartRate))
		}
	}

	var curRows, priorRows []store.DailySleep
	for _, s := range in.Sleep {
		if week.Contains(s.Date) {
			weekSleep = append(weekSleep, float64(s.MinutesAsleep))
			curRows = append(curRows, s)
		}
		if priorWeek.Contains(s.Date) {
			priorRows = append(priorRows, s)
		}
	}

	snap.AvgSleepHours = Average(weekSleep) / 60
	snap.AvgSteps = Average(steps)
	snap.CurrentRHR = Average(curHR)
	snap.BaselineRHR = Average(baseHR)
	snap.RecentNights = recentNights(in.Sleep, 3)
	snap.CurrentBedtime = Average(bedtimeMinutes(curRows))
	snap.PriorBedtime = Average(bedtimeMinutes(priorRows))
	snap.CurrentRem = stageAverages(curRows).rem
	snap.PriorRem = stageAverages(priorRows).rem
	return snap
}

// EvaluateAlertRules runs every rule against the snapshot
func EvaluateAlertRules(snap AlertSnapshot, prefs store.AlertPreference) []AlertCandidate {
	var out []AlertCandidate
	for _, rule := range AlertRules {
		if c := rule.Evaluate(snap, prefs); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func recentNights(rows []store.DailySleep, n int) []int {
	sorted := make([]store.DailySleep, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	nights := make([]int, len(sorted))
	for i, s := range sorted {
		nights[i] = s.MinutesAsleep
	}
	return nights
}

func sleepBelowTarget(s AlertSnapshot, p store.AlertPreference) bool {
	return s.AvgSleepHours > 0 && s.AvgSleepHours < p.MinSleepHours
}

func rhrElevated(s AlertSnapshot, p store.AlertPreference) bool {
	return s.BaselineRHR > 0 && s.CurrentRHR-s.BaselineRHR >= p.MaxRestingHRDelta
}

func lowSleepRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if !sleepBelowTarget(s, p) {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertLowSleep,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("Average sleep is %.1fh, below target %.1fh.", s.AvgSleepHours, p.MinSleepHours),
	}
}

func lowStepsRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if s.AvgSteps <= 0 || s.AvgSteps >= float64(p.MinAvgSteps) {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertLowSteps,
		Severity: SeverityMedium,
		Message: fmt.Sprintf("Average steps are %s, below target %s.",
			humanize.Comma(int64(RoundInt(s.AvgSteps))), humanize.Comma(int64(p.MinAvgSteps))),
	}
}

func lowZone2DaysRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if s.Zone2Days >= p.MinZone2Days {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertLowZone2Days,
		Severity: SeverityLow,
		Message:  fmt.Sprintf("Zone 2 activity logged on %d day(s); target is %d day(s).", s.Zone2Days, p.MinZone2Days),
	}
}

func elevatedRHRRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if !rhrElevated(s, p) {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertElevatedRHR,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Resting HR is up by %.1f bpm vs baseline. Prioritize recovery today.", s.CurrentRHR-s.BaselineRHR),
	}
}

func combinedRecoveryRiskRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if !sleepBelowTarget(s, p) || !rhrElevated(s, p) || s.WeeklyZone2 < highZone2LoadMinutes {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertCombinedRecoveryRisk,
		Severity: SeverityHigh,
		Message:  "RHR elevated + low sleep + high Zone2 load. Consider a lighter recovery day.",
	}
}

func poorSleepStreakRule(s AlertSnapshot, p store.AlertPreference) *AlertCandidate {
	if len(s.RecentNights) < 3 {
		return nil
	}
	threshold := p.MinSleepHours * 60
	for _, m := range s.RecentNights[:3] {
		if float64(m) >= threshold {
			return nil
		}
	}
	return &AlertCandidate{
		Type:     AlertPoorSleepStreak,
		Severity: SeverityHigh,
		Message:  "Three consecutive low-sleep nights detected. Schedule a recovery night.",
	}
}

func bedtimeDriftRule(s AlertSnapshot, _ store.AlertPreference) *AlertCandidate {
	if s.CurrentBedtime <= 0 || s.PriorBedtime <= 0 || s.CurrentBedtime-s.PriorBedtime <= bedtimeDriftMinutes {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertBedtimeDrift,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("Bedtime drifted later by %d minutes vs prior week.", RoundInt(s.CurrentBedtime-s.PriorBedtime)),
	}
}

func remDropRule(s AlertSnapshot, _ store.AlertPreference) *AlertCandidate {
	if s.PriorRem <= 0 || s.CurrentRem >= s.PriorRem*remDropRatio {
		return nil
	}
	return &AlertCandidate{
		Type:     AlertRemDrop,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("REM sleep dropped by %d%% vs prior week.", RoundInt((s.PriorRem-s.CurrentRem)/s.PriorRem*100)),
	}
}

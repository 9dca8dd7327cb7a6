package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"healthdash/internal/store"
)

// RecoveryHistoryDays is how far back recovery signals read
const RecoveryHistoryDays = 30

const (
	vo2ImprovementDelta = 0.5
	hrvDropDelta        = -5
	lowSpo2Pct          = 94
)

// RecoveryMetric is the latest value and weekly change of one biomarker
type RecoveryMetric struct {
	Label   string   `json:"label"`
	Value   *float64 `json:"value"`
	Delta7d *float64 `json:"delta7d"`
	Unit    string   `json:"unit"`
	Source  string   `json:"source"`
}

// RecoverySignals is the premium biomarker payload
type RecoverySignals struct {
	HasAnyData    bool           `json:"hasAnyData"`
	DateLabel     string         `json:"dateLabel"`
	CardioFitness RecoveryMetric `json:"cardioFitness"`
	Vo2Max        RecoveryMetric `json:"vo2Max"`
	HrvRmssd      RecoveryMetric `json:"hrvRmssd"`
	BreathingRate RecoveryMetric `json:"breathingRate"`
	Spo2Avg       RecoveryMetric `json:"spo2Avg"`
	SkinTempC     RecoveryMetric `json:"skinTempC"`
	CoreTempC     RecoveryMetric `json:"coreTempC"`
	Notes         []string       `json:"notes"`
}

// Metrics returns the tracked metrics in display order
func (r RecoverySignals) Metrics() []RecoveryMetric {
	return []RecoveryMetric{r.CardioFitness, r.Vo2Max, r.HrvRmssd, r.BreathingRate, r.Spo2Avg, r.SkinTempC, r.CoreTempC}
}

type biomarkerPick func(store.DailyRecovery) *float64

// BuildRecoverySignals extracts latest values and 7-day deltas from sparse biomarkers
func BuildRecoverySignals(rows []store.DailyRecovery, now time.Time) RecoverySignals {
	window := NewWindow(Today(now), RecoveryHistoryDays)
	var sorted []store.DailyRecovery
	for _, r := range rows {
		if window.Contains(r.Date) {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	dateLabel := "n/a"
	if len(sorted) > 0 {
		dateLabel = DayKey(sorted[len(sorted)-1].Date)
	}

	out := RecoverySignals{
		DateLabel:     dateLabel,
		CardioFitness: recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.CardioFitnessScore }, "Cardio fitness", "score", "Fitbit Cardio Score API"),
		Vo2Max:        recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.Vo2Max }, "VO2 max", "ml/kg/min", "Fitbit Cardio Score API"),
		HrvRmssd:      recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.HrvRmssd }, "HRV (RMSSD)", "ms", "Fitbit HRV API"),
		BreathingRate: recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.BreathingRate }, "Breathing rate", "br/min", "Fitbit Breathing Rate API"),
		Spo2Avg:       recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.Spo2Avg }, "SpO2", "%", "Fitbit SpO2 API"),
		SkinTempC:     recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.SkinTempC }, "Skin temp", "C", "Fitbit Skin Temperature API"),
		CoreTempC:     recoveryMetric(sorted, func(r store.DailyRecovery) *float64 { return r.CoreTempC }, "Core temp", "C", "Fitbit Core Temperature API"),
	}

	for _, m := range out.Metrics() {
		if m.Value != nil {
			out.HasAnyData = true
			break
		}
	}

	var notes []string
	if !out.HasAnyData {
		notes = append(notes, "No premium biomarker data returned yet. Reconnect Fitbit with expanded scopes, then sync recent days.")
	}
	if v := out.Vo2Max; v.Value != nil && v.Delta7d != nil && *v.Delta7d > vo2ImprovementDelta {
		notes = append(notes, fmt.Sprintf("VO2 max improved by %.1f over prior week.", *v.Delta7d))
	}
	if h := out.HrvRmssd; h.Value != nil && h.Delta7d != nil && *h.Delta7d < hrvDropDelta {
		notes = append(notes, fmt.Sprintf("HRV dropped by %.1fms vs prior week. Consider lighter training.", math.Abs(*h.Delta7d)))
	}
	if s := out.Spo2Avg; s.Value != nil && *s.Value < lowSpo2Pct {
		notes = append(notes, fmt.Sprintf("Average SpO2 is %s%%. Confirm sensor fit and monitor trend.", formatNumber(*s.Value)))
	}
	if len(notes) == 0 {
		notes = append(notes, "Recovery biomarkers are stable based on available Fitbit API data.")
	}
	out.Notes = notes
	return out
}

// recoveryMetric prefers latest - prior week average, falling back to
// last week average - prior week average.
func recoveryMetric(rows []store.DailyRecovery, pick biomarkerPick, label, unit, source string) RecoveryMetric {
	latest := latestValue(rows, pick)
	avg7 := averageLast(rows, 7, pick)
	var prev7 *float64
	if len(rows) > 7 {
		prev7 = averageLast(rows[:len(rows)-7], 7, pick)
	}

	var delta *float64
	switch {
	case latest != nil && prev7 != nil:
		d := *latest - *prev7
		delta = &d
	case avg7 != nil && prev7 != nil:
		d := *avg7 - *prev7
		delta = &d
	}

	return RecoveryMetric{
		Label:   label,
		Value:   Round1Ptr(latest),
		Delta7d: Round1Ptr(delta),
		Unit:    unit,
		Source:  source,
	}
}

func latestValue(rows []store.DailyRecovery, pick biomarkerPick) *float64 {
	for i := len(rows) - 1; i >= 0; i-- {
		if v := pick(rows[i]); v != nil {
			val := *v
			return &val
		}
	}
	return nil
}

func averageLast(rows []store.DailyRecovery, n int, pick biomarkerPick) *float64 {
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	var values []float64
	for _, r := range rows {
		if v := pick(r); v != nil {
			values = append(values, *v)
		}
	}
	return AverageOrNil(values)
}

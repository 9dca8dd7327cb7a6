package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"healthdash/internal/store"
)

// SleepHistoryDays is how far back sleep insights read
const SleepHistoryDays = 21

const (
	bedtimeDriftMinutes = 45
	remDropMinutes      = 15
	minutesPerDay       = 24 * 60
)

// SleepInput is the raw data for sleep insights
type SleepInput struct {
	Rows        []store.DailySleep
	TargetHours float64
	Mode        ScoreMode
}

// SleepInsights is the sleep coaching payload
type SleepInsights struct {
	TargetSleepHours float64          `json:"targetSleepHours"`
	SleepScore       SleepScoreSummary `json:"sleepScore"`
	SleepDebtHours   float64          `json:"sleepDebtHours"`
	PoorNightsLast14 int              `json:"poorNightsLast14"`
	Consistency      SleepConsistency `json:"consistency"`
	StageTrend       StageTrend       `json:"stageTrend"`
	SmartFlags       []string         `json:"smartFlags"`
}

// SleepScoreSummary holds the latest and 7-day average score
type SleepScoreSummary struct {
	Latest    *int `json:"latest"`
	Average7d *int `json:"average7d"`
}

// SleepConsistency measures bed and wake time variability
type SleepConsistency struct {
	BedtimeStdMinutes int    `json:"bedtimeStdMinutes"`
	WakeStdMinutes    int    `json:"wakeStdMinutes"`
	Score             int    `json:"score"`
	AvgBedtime        string `json:"avgBedtime"`
	AvgWakeTime       string `json:"avgWakeTime"`
}

// StageTrend is last 7 days vs the prior 7 days, minutes per night
type StageTrend struct {
	DeepDelta  int `json:"deepDelta"`
	RemDelta   int `json:"remDelta"`
	LightDelta int `json:"lightDelta"`
	WakeDelta  int `json:"wakeDelta"`
}

// BuildSleepInsights computes debt, consistency, stage trends and flags
func BuildSleepInsights(in SleepInput, now time.Time) SleepInsights {
	today := Today(now)
	last14 := NewWindow(today, 14)
	last7, prev7 := WindowedDelta(today, 7)

	rows14 := filterSleep(in.Rows, last14)
	rows7 := filterSleep(in.Rows, last7)
	prevRows := filterSleep(in.Rows, prev7)

	targetMin := in.TargetHours * 60
	var debtMinutes float64
	poorNights := 0
	for _, r := range rows14 {
		debtMinutes += math.Max(0, targetMin-float64(r.MinutesAsleep))
		if float64(r.MinutesAsleep) < targetMin {
			poorNights++
		}
	}

	bedtimes := bedtimeMinutes(rows14)
	wakes := wakeMinutes(rows14)
	bedStd := StdDev(bedtimes)
	wakeStd := StdDev(wakes)

	consistency := SleepConsistency{
		BedtimeStdMinutes: RoundInt(bedStd),
		WakeStdMinutes:    RoundInt(wakeStd),
		Score:             max(0, RoundInt(100-(bedStd+wakeStd)*0.65)),
		AvgBedtime:        "n/a",
		AvgWakeTime:       "n/a",
	}
	if len(bedtimes) > 0 {
		consistency.AvgBedtime = minutesToClock(Average(bedtimes))
	}
	if len(wakes) > 0 {
		consistency.AvgWakeTime = minutesToClock(Average(wakes))
	}

	cur, base := stageAverages(rows7), stageAverages(prevRows)
	remDelta := cur.rem - base.rem
	trend := StageTrend{
		DeepDelta:  RoundInt(cur.deep - base.deep),
		RemDelta:   RoundInt(remDelta),
		LightDelta: RoundInt(cur.light - base.light),
		WakeDelta:  RoundInt(cur.wake - base.wake),
	}

	var flags []string
	if threePoorNights(in.Rows, targetMin) {
		flags = append(flags, "Three poor sleep nights in a row. Consider an early recovery night.")
	}
	curBed := Average(bedtimeMinutes(rows7))
	prevBed := Average(bedtimeMinutes(prevRows))
	if curBed > 0 && prevBed > 0 && curBed-prevBed > bedtimeDriftMinutes {
		flags = append(flags, fmt.Sprintf("Bedtime drifted later by %d minutes vs prior week.", RoundInt(curBed-prevBed)))
	}
	if remDelta < -remDropMinutes {
		flags = append(flags, fmt.Sprintf("REM sleep is down %d min/night vs prior week.", RoundInt(math.Abs(remDelta))))
	}
	if len(flags) == 0 {
		flags = append(flags, "Sleep patterns look stable this week.")
	}

	return SleepInsights{
		TargetSleepHours: in.TargetHours,
		SleepScore:       sleepScoreSummary(rows14, rows7, in.TargetHours, in.Mode),
		SleepDebtHours:   Round1(debtMinutes / 60),
		PoorNightsLast14: poorNights,
		Consistency:      consistency,
		StageTrend:       trend,
		SmartFlags:       flags,
	}
}

func sleepScoreSummary(rows14, rows7 []store.DailySleep, goalHours float64, mode ScoreMode) SleepScoreSummary {
	var summary SleepScoreSummary
	if len(rows14) > 0 {
		latest := ScoreNight(rows14[len(rows14)-1], goalHours, mode).Total
		summary.Latest = &latest
	}
	if len(rows7) > 0 {
		scores := make([]float64, len(rows7))
		for i, r := range rows7 {
			scores[i] = float64(ScoreNight(r, goalHours, mode).Total)
		}
		avg := RoundInt(Average(scores))
		summary.Average7d = &avg
	}
	return summary
}

// filterSleep returns rows in the window, sorted by date
func filterSleep(rows []store.DailySleep, w Window) []store.DailySleep {
	var out []store.DailySleep
	for _, r := range rows {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// threePoorNights reports whether the three most recent nights all fell short
func threePoorNights(rows []store.DailySleep, targetMin float64) bool {
	if len(rows) < 3 {
		return false
	}
	sorted := make([]store.DailySleep, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	for _, r := range sorted[:3] {
		if float64(r.MinutesAsleep) >= targetMin {
			return false
		}
	}
	return true
}

// BedtimeMinutes returns minutes after midnight, treating times before noon
// as the following day so that 23:30 and 00:30 stay an hour apart.
func BedtimeMinutes(t time.Time) float64 {
	m := float64(t.Hour()*60 + t.Minute())
	if m < 12*60 {
		m += minutesPerDay
	}
	return m
}

func bedtimeMinutes(rows []store.DailySleep) []float64 {
	var out []float64
	for _, r := range rows {
		if r.SleepStart != nil {
			out = append(out, BedtimeMinutes(*r.SleepStart))
		}
	}
	return out
}

// wake times are not shifted
func wakeMinutes(rows []store.DailySleep) []float64 {
	var out []float64
	for _, r := range rows {
		if r.SleepEnd != nil {
			out = append(out, float64(r.SleepEnd.Hour()*60+r.SleepEnd.Minute()))
		}
	}
	return out
}

func minutesToClock(v float64) string {
	n := ((RoundInt(v) % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

type stageAvg struct {
	deep, rem, light, wake float64
}

func stageAverages(rows []store.DailySleep) stageAvg {
	var deep, rem, light, wake []float64
	for _, r := range rows {
		deep = append(deep, float64(intOrZero(r.DeepMinutes)))
		rem = append(rem, float64(intOrZero(r.RemMinutes)))
		light = append(light, float64(intOrZero(r.LightMinutes)))
		wake = append(wake, float64(intOrZero(r.WakeMinutes)))
	}
	return stageAvg{
		deep:  Average(deep),
		rem:   Average(rem),
		light: Average(light),
		wake:  Average(wake),
	}
}

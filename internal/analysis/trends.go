package analysis

import (
	"sort"
	"time"

	"healthdash/internal/store"
)

// TrendWindowSizes are the fixed comparison windows in days
var TrendWindowSizes = []int{7, 30, 90}

// TrendHistoryDays covers the largest window and its baseline
const TrendHistoryDays = 180

// DayMetrics is one day of the headline series. Nil means no row that day.
type DayMetrics struct {
	Date       time.Time
	Steps      *int
	SleepHours *float64
	Zone2      *int
	RestingHR  *int
}

// TrendWindow holds current-vs-baseline metrics for one window size
type TrendWindow struct {
	Days                int         `json:"days"`
	Zone2Total          TrendMetric `json:"zone2Total"`
	AvgSleepHours       TrendMetric `json:"avgSleepHours"`
	AvgSteps            TrendMetric `json:"avgSteps"`
	AvgRestingHeartRate TrendMetric `json:"avgRestingHeartRate"`
}

// TrendPayload lists the 7/30/90 day windows
type TrendPayload struct {
	Windows []TrendWindow `json:"windows"`
}

// MergeDayMetrics joins activity, sleep and heart zone rows by date
func MergeDayMetrics(activity []store.DailyActivity, sleep []store.DailySleep, zones []store.DailyHeartZones) []DayMetrics {
	byKey := make(map[string]*DayMetrics)
	get := func(t time.Time) *DayMetrics {
		key := DayKey(t)
		m, ok := byKey[key]
		if !ok {
			m = &DayMetrics{Date: Today(t)}
			byKey[key] = m
		}
		return m
	}

	for _, a := range activity {
		steps := a.Steps
		get(a.Date).Steps = &steps
	}
	for _, s := range sleep {
		hours := float64(s.MinutesAsleep) / 60
		get(s.Date).SleepHours = &hours
	}
	for _, z := range zones {
		m := get(z.Date)
		zone2 := z.Zone2Minutes
		m.Zone2 = &zone2
		m.RestingHR = z.RestingHeartRate
	}

	out := make([]DayMetrics, 0, len(byKey))
	for _, m := range byKey {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BuildTrends compares each window against the block of equal length before it
func BuildTrends(days []DayMetrics, now time.Time) TrendPayload {
	today := Today(now)
	windows := make([]TrendWindow, 0, len(TrendWindowSizes))
	for _, n := range TrendWindowSizes {
		current, baseline := WindowedDelta(today, n)
		cur, base := aggregateWindow(days, current), aggregateWindow(days, baseline)
		windows = append(windows, TrendWindow{
			Days:                n,
			Zone2Total:          NewTrendMetric(cur.zone2Total, base.zone2Total),
			AvgSleepHours:       NewTrendMetric(cur.sleepHours, base.sleepHours),
			AvgSteps:            NewTrendMetric(cur.steps, base.steps),
			AvgRestingHeartRate: NewTrendMetric(cur.restingHR, base.restingHR),
		})
	}
	return TrendPayload{Windows: windows}
}

type windowAggregate struct {
	zone2Total float64
	sleepHours float64
	steps      float64
	restingHR  float64
}

// aggregateWindow sums zone 2 and averages the rest over days that have data
func aggregateWindow(days []DayMetrics, w Window) windowAggregate {
	var zone2, sleep, steps, rhr []float64
	for _, d := range days {
		if !w.Contains(d.Date) {
			continue
		}
		if d.Zone2 != nil {
			zone2 = append(zone2, float64(*d.Zone2))
		}
		if d.SleepHours != nil {
			sleep = append(sleep, *d.SleepHours)
		}
		if d.Steps != nil {
			steps = append(steps, float64(*d.Steps))
		}
		if d.RestingHR != nil {
			rhr = append(rhr, float64(*d.RestingHR))
		}
	}
	return windowAggregate{
		zone2Total: Sum(zone2),
		sleepHours: Average(sleep),
		steps:      Average(steps),
		restingHR:  Average(rhr),
	}
}

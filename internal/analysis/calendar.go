package analysis

import (
	"sort"
	"time"

	"healthdash/internal/store"
)

// MonthKeyLayout formats calendar month keys
const MonthKeyLayout = "2006-01"

// DayDashboard is everything recorded for one calendar day
type DayDashboard struct {
	Date                 string               `json:"date"`
	Steps                int                  `json:"steps"`
	ActiveMinutes        int                  `json:"activeMinutes"`
	SedentaryMinutes     int                  `json:"sedentaryMinutes"`
	LightlyActiveMinutes int                  `json:"lightlyActiveMins"`
	FairlyActiveMinutes  int                  `json:"fairlyActiveMins"`
	VeryActiveMinutes    int                  `json:"veryActiveMins"`
	SleepMinutes         int                  `json:"sleepMinutes"`
	SleepScore           *int                 `json:"sleepScore"`
	SleepScoreBreakdown  *SleepScoreBreakdown `json:"sleepScoreBreakdown"`
	Zone2Minutes         int                  `json:"zone2Minutes"`
	CardioMinutes        int                  `json:"cardioMinutes"`
	PeakMinutes          int                  `json:"peakMinutes"`
	OutOfRangeMinutes    int                  `json:"outOfRangeMinutes"`
	RestingHeartRate     *int                 `json:"restingHeartRate"`
	HasActivity          bool                 `json:"hasActivity"`
	Activities           []store.ActivityLog  `json:"activities"`
	Sleep                *store.DailySleep    `json:"sleep"`
}

// WeeklySummary aggregates the last 7 days
type WeeklySummary struct {
	TotalZone2Minutes     int     `json:"totalZone2Minutes"`
	AverageSleepHours     float64 `json:"averageSleepHours"`
	AverageSteps          int     `json:"averageSteps"`
	AverageActiveMinutes  int     `json:"averageActiveMinutes"`
	AverageSedentaryHours float64 `json:"averageSedentaryHours"`
	Zone2DaysCount        int     `json:"zone2DaysCount"`
}

// CalendarPayload is a month view laid out in Sunday-start weeks
type CalendarPayload struct {
	Month         string         `json:"month"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	Days          []DayDashboard `json:"days"`
	WeeklySummary WeeklySummary  `json:"weeklySummary"`
}

// Weeks splits the grid into rows of seven days
func (c CalendarPayload) Weeks() [][]DayDashboard {
	var weeks [][]DayDashboard
	for i := 0; i < len(c.Days); i += 7 {
		end := min(i+7, len(c.Days))
		weeks = append(weeks, c.Days[i:end])
	}
	return weeks
}

// DailyRows is the raw row set for a date range
type DailyRows struct {
	Activity []store.DailyActivity
	Sleep    []store.DailySleep
	Zones    []store.DailyHeartZones
	Recovery []store.DailyRecovery
	Logs     []store.ActivityLog
}

// MonthGrid returns the Sunday-start grid that covers month
func MonthGrid(month time.Time) Window {
	y, m, _ := month.UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Window{
		From: StartOfWeek(first),
		To:   AddDays(StartOfWeek(last), 6),
	}
}

// BuildDayDashboards lays out one DayDashboard per day of the window,
// scoring each night of sleep.
func BuildDayDashboards(w Window, rows DailyRows, goalHours float64, mode ScoreMode) []DayDashboard {
	days := EnumerateDays(w.From, w.To)
	out := make([]DayDashboard, len(days))
	byKey := make(map[string]*DayDashboard, len(days))
	for i, d := range days {
		out[i] = DayDashboard{Date: DayKey(d), Activities: []store.ActivityLog{}}
		byKey[out[i].Date] = &out[i]
	}

	for _, a := range rows.Activity {
		if d, ok := byKey[DayKey(a.Date)]; ok {
			d.Steps = a.Steps
			d.ActiveMinutes = a.ActiveMinutes
			d.SedentaryMinutes = a.SedentaryMinutes
			d.LightlyActiveMinutes = a.LightlyActiveMinutes
			d.FairlyActiveMinutes = a.FairlyActiveMinutes
			d.VeryActiveMinutes = a.VeryActiveMinutes
		}
	}
	for _, s := range rows.Sleep {
		d, ok := byKey[DayKey(s.Date)]
		if !ok {
			continue
		}
		night := s
		breakdown := ScoreNight(s, goalHours, mode)
		d.SleepMinutes = s.MinutesAsleep
		d.SleepScore = &breakdown.Total
		d.SleepScoreBreakdown = &breakdown
		d.Sleep = &night
	}
	for _, z := range rows.Zones {
		if d, ok := byKey[DayKey(z.Date)]; ok {
			d.Zone2Minutes = z.Zone2Minutes
			d.CardioMinutes = z.CardioMinutes
			d.PeakMinutes = z.PeakMinutes
			d.OutOfRangeMinutes = z.OutOfRangeMinutes
			d.RestingHeartRate = z.RestingHeartRate
		}
	}

	logs := make([]store.ActivityLog, len(rows.Logs))
	copy(logs, rows.Logs)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].StartTime.Before(logs[j].StartTime) })
	for _, l := range logs {
		if d, ok := byKey[DayKey(l.StartTime)]; ok {
			d.HasActivity = true
			d.Activities = append(d.Activities, l)
		}
	}
	return out
}

// BuildWeeklySummary aggregates the 7 days ending today
func BuildWeeklySummary(rows DailyRows, now time.Time) WeeklySummary {
	week := NewWindow(Today(now), 7)

	var summary WeeklySummary
	var sleepMinutes, steps, active, sedentary []float64
	for _, z := range rows.Zones {
		if week.Contains(z.Date) {
			summary.TotalZone2Minutes += z.Zone2Minutes
			if z.Zone2Minutes > 0 {
				summary.Zone2DaysCount++
			}
		}
	}
	for _, s := range rows.Sleep {
		if week.Contains(s.Date) {
			sleepMinutes = append(sleepMinutes, float64(s.MinutesAsleep))
		}
	}
	for _, a := range rows.Activity {
		if week.Contains(a.Date) {
			steps = append(steps, float64(a.Steps))
			active = append(active, float64(a.ActiveMinutes))
			sedentary = append(sedentary, float64(a.SedentaryMinutes))
		}
	}

	summary.AverageSleepHours = Average(sleepMinutes) / 60
	summary.AverageSteps = RoundInt(Average(steps))
	summary.AverageActiveMinutes = RoundInt(Average(active))
	summary.AverageSedentaryHours = Round1(Average(sedentary) / 60)
	return summary
}

// BuildCalendar builds the month grid and the trailing weekly summary.
// month rows must cover MonthGrid(month); week rows the last 7 days.
func BuildCalendar(month time.Time, monthRows, weekRows DailyRows, goalHours float64, mode ScoreMode, now time.Time) CalendarPayload {
	grid := MonthGrid(month)
	return CalendarPayload{
		Month:         month.UTC().Format(MonthKeyLayout),
		StartDate:     DayKey(grid.From),
		EndDate:       DayKey(grid.To),
		Days:          BuildDayDashboards(grid, monthRows, goalHours, mode),
		WeeklySummary: BuildWeeklySummary(weekRows, now),
	}
}

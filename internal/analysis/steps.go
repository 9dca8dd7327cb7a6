package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"healthdash/internal/store"
)

// Step history windows
const (
	StepHistoryDays    = 120
	StepActivityDays   = 14
	stepPaceTolerance  = 0.2
	peakWindowCount    = 3
	walkPromptMinSteps = 1500
)

// Pacing status values
const (
	PaceAhead   = "ahead"
	PaceOnTrack = "on_track"
	PaceBehind  = "behind"
)

// StepInput is the raw data for step insights
type StepInput struct {
	Days        []store.DailyActivity
	Logs        []store.ActivityLog
	DailyTarget int
}

// StepInsights is the step coaching payload
type StepInsights struct {
	DailyTarget     int               `json:"dailyTarget"`
	TodaySteps      int               `json:"todaySteps"`
	WeeklyPacing    WeeklyPacing      `json:"weeklyPacing"`
	Streaks         StepStreaks       `json:"streaks"`
	PeakWindows     []PeakWindow      `json:"peakWindows"`
	Distribution    StepDistribution  `json:"distribution"`
	Coaching        StepCoaching      `json:"coaching"`
	ProgressionPlan []ProgressionStep `json:"progressionPlan"`
}

// WeeklyPacing compares this week's steps with the expected total so far
type WeeklyPacing struct {
	TargetTotal     int    `json:"targetTotal"`
	CurrentTotal    int    `json:"currentTotal"`
	ExpectedByToday int    `json:"expectedByToday"`
	DaysElapsed     int    `json:"daysElapsed"`
	Status          string `json:"status"`
	Gap             int    `json:"gap"`
}

// StepStreaks holds streak stats against the daily target
type StepStreaks struct {
	Current   int     `json:"current"`
	Best      int     `json:"best"`
	LastBreak *string `json:"lastBreak"`
}

// PeakWindow is one of the highest-step logged activities
type PeakWindow struct {
	Label string  `json:"label"`
	Steps int     `json:"steps"`
	Pace  float64 `json:"pace"` // steps per minute
}

// StepDistribution is the percent of logged steps by time of day
type StepDistribution struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
}

// StepCoaching is today's adaptive target
type StepCoaching struct {
	TodayTarget int    `json:"todayTarget"`
	Message     string `json:"message"`
}

// ProgressionStep is the target for one remaining day this week
type ProgressionStep struct {
	Day    string `json:"day"`
	Target int    `json:"target"`
}

// BuildStepInsights computes pacing, streaks and coaching for steps
func BuildStepInsights(in StepInput, now time.Time) StepInsights {
	today := Today(now)
	series := make(DaySeries, len(in.Days))
	for _, d := range in.Days {
		series[DayKey(d.Date)] = float64(d.Steps)
	}
	todaySteps := int(series[DayKey(today)])
	target := float64(in.DailyTarget)
	pacing := weeklyPacing(in.Days, in.DailyTarget, today)

	return StepInsights{
		DailyTarget:  in.DailyTarget,
		TodaySteps:   todaySteps,
		WeeklyPacing: pacing,
		Streaks: StepStreaks{
			Current:   CurrentStreak(series, target, today, StepHistoryDays),
			Best:      BestStreak(series, target),
			LastBreak: lastStepBreak(series, target, today),
		},
		PeakWindows:     topPeakWindows(in.Logs),
		Distribution:    stepDistribution(in.Logs),
		Coaching:        stepCoaching(pacing, in.DailyTarget, todaySteps, today),
		ProgressionPlan: progressionPlan(pacing, in.DailyTarget, today),
	}
}

func weeklyPacing(days []store.DailyActivity, dailyTarget int, today time.Time) WeeklyPacing {
	week := Window{From: StartOfWeek(today), To: today}
	daysElapsed := week.Days()

	total := 0
	for _, d := range days {
		if week.Contains(d.Date) {
			total += d.Steps
		}
	}

	expected := dailyTarget * daysElapsed
	gap := total - expected
	tolerance := float64(dailyTarget) * stepPaceTolerance

	status := PaceOnTrack
	switch {
	case float64(gap) > tolerance:
		status = PaceAhead
	case float64(gap) < -tolerance:
		status = PaceBehind
	}

	return WeeklyPacing{
		TargetTotal:     dailyTarget * 7,
		CurrentTotal:    total,
		ExpectedByToday: expected,
		DaysElapsed:     daysElapsed,
		Status:          status,
		Gap:             gap,
	}
}

// lastStepBreak finds the most recent logged day below target
func lastStepBreak(series DaySeries, target float64, today time.Time) *string {
	for i := 0; i < StepHistoryDays; i++ {
		key := DayKey(AddDays(today, -i))
		if v, ok := series[key]; ok && v < target {
			return &key
		}
	}
	return nil
}

func topPeakWindows(logs []store.ActivityLog) []PeakWindow {
	windows := []PeakWindow{}
	for _, l := range logs {
		steps := intOrZero(l.Steps)
		if steps <= 0 || l.DurationMinutes <= 0 {
			continue
		}
		windows = append(windows, PeakWindow{
			Label: l.StartTime.Format("Mon 3:04 PM"),
			Steps: steps,
			Pace:  float64(steps) / float64(l.DurationMinutes),
		})
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Steps > windows[j].Steps
	})
	if len(windows) > peakWindowCount {
		windows = windows[:peakWindowCount]
	}
	for i := range windows {
		windows[i].Pace = Round1(windows[i].Pace)
	}
	return windows
}

func stepDistribution(logs []store.ActivityLog) StepDistribution {
	var morning, afternoon, evening float64
	for _, l := range logs {
		steps := float64(intOrZero(l.Steps))
		if steps == 0 {
			continue
		}
		switch hour := l.StartTime.Hour(); {
		case hour < 12:
			morning += steps
		case hour < 17:
			afternoon += steps
		default:
			evening += steps
		}
	}

	total := morning + afternoon + evening
	return StepDistribution{
		Morning:   Percent(morning, total),
		Afternoon: Percent(afternoon, total),
		Evening:   Percent(evening, total),
	}
}

func stepCoaching(pacing WeeklyPacing, dailyTarget, todaySteps int, today time.Time) StepCoaching {
	weekEnd := AddDays(StartOfWeek(today), 6)
	remainingDays := max(1, DaysBetween(today, weekEnd)+1)

	remainingWeek := max(0, pacing.TargetTotal-pacing.CurrentTotal)
	todayTarget := max(dailyTarget, ceilDiv(remainingWeek, remainingDays))
	remainingToday := max(0, todayTarget-todaySteps)

	message := "You are on track. Keep your usual walking routine."
	switch {
	case remainingToday > walkPromptMinSteps:
		message = fmt.Sprintf("Need %s more steps today. Add a 20-30 minute walk.", humanize.Comma(int64(remainingToday)))
	case remainingToday > 0:
		message = fmt.Sprintf("Need %s more steps to hit today's coaching target.", humanize.Comma(int64(remainingToday)))
	}

	return StepCoaching{TodayTarget: todayTarget, Message: message}
}

func progressionPlan(pacing WeeklyPacing, dailyTarget int, today time.Time) []ProgressionStep {
	remaining := max(0, pacing.TargetTotal-pacing.CurrentTotal)
	remainingDays := max(1, 7-pacing.DaysElapsed)
	perDay := ceilDiv(remaining, remainingDays)
	if perDay == 0 {
		perDay = dailyTarget
	}

	plan := make([]ProgressionStep, 0, remainingDays)
	for i := 1; i <= remainingDays; i++ {
		plan = append(plan, ProgressionStep{
			Day:    AddDays(today, i).Format("Mon"),
			Target: max(dailyTarget, perDay),
		})
	}
	return plan
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

package analysis

import (
	"fmt"
	"math"
	"time"

	"healthdash/internal/store"
)

// Readiness and planner constants
const (
	RHRHistoryDays       = 30
	TargetZone2Days      = 5
	weeklyZone2Goal      = 150
	minSessionMinutes    = 20
	rhrElevatedDelta     = 3
	lowSleepHours        = 6.5
	recentZone2LoadLimit = 120
)

// RHR baseline status values
const (
	RHRImproving = "improving"
	RHRStable    = "stable"
	RHRElevated  = "elevated"
	RHRUnknown   = "unknown"
)

// RHRInput is the raw data for RHR/Zone2 insights
type RHRInput struct {
	Zones []store.DailyHeartZones // last 30 days
	Sleep []store.DailySleep      // last 7 days
}

// RHRZone2Insights is the readiness payload
type RHRZone2Insights struct {
	Baseline  RHRBaseline  `json:"baseline"`
	Readiness Readiness    `json:"readiness"`
	Planner   Zone2Planner `json:"planner"`
}

// RHRBaseline compares today's resting HR with recent averages
type RHRBaseline struct {
	RHR7d      *float64 `json:"rhr7d"`
	RHR30d     *float64 `json:"rhr30d"`
	TodayRHR   *int     `json:"todayRhr"`
	DeltaVs30d *float64 `json:"deltaVs30d"`
	Status     string   `json:"status"`
}

// Readiness is a 0-100 training readiness score
type Readiness struct {
	Score   int      `json:"score"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons"`
}

// Zone2Planner suggests zone 2 sessions for the rest of the week
type Zone2Planner struct {
	TargetZone2Days    int            `json:"targetZone2Days"`
	CompletedZone2Days int            `json:"completedZone2Days"`
	RemainingDays      int            `json:"remainingDays"`
	SuggestedSessions  []Zone2Session `json:"suggestedSessions"`
}

// Zone2Session is one suggested zone 2 session
type Zone2Session struct {
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
}

// BuildRHRZone2Insights computes RHR baseline deviation, readiness and a planner
func BuildRHRZone2Insights(in RHRInput, now time.Time) RHRZone2Insights {
	today := Today(now)
	last30 := NewWindow(today, RHRHistoryDays)
	last7 := NewWindow(today, 7)
	last3 := NewWindow(today, 3)

	var rhr7, rhr30 []float64
	var todayRHR *int
	completed, weeklyZone2, recentZone2 := 0, 0, 0
	for _, z := range in.Zones {
		if !last30.Contains(z.Date) {
			continue
		}
		if z.RestingHeartRate != nil {
			rhr30 = append(rhr30, float64(*z.RestingHeartRate))
			if last7.Contains(z.Date) {
				rhr7 = append(rhr7, float64(*z.RestingHeartRate))
			}
		}
		if DayKey(z.Date) == DayKey(today) {
			todayRHR = z.RestingHeartRate
		}
		if last7.Contains(z.Date) {
			weeklyZone2 += z.Zone2Minutes
			if z.Zone2Minutes > 0 {
				completed++
			}
		}
		if last3.Contains(z.Date) {
			recentZone2 += z.Zone2Minutes
		}
	}

	rhr7d := AverageOrNil(rhr7)
	rhr30d := AverageOrNil(rhr30)
	var delta *float64
	if todayRHR != nil && rhr30d != nil {
		d := float64(*todayRHR) - *rhr30d
		delta = &d
	}

	var sleepHours []float64
	for _, s := range in.Sleep {
		if last7.Contains(s.Date) {
			sleepHours = append(sleepHours, float64(s.MinutesAsleep)/60)
		}
	}
	avgSleep := AverageOrNil(sleepHours)

	score := 100
	var reasons []string
	if delta != nil && *delta > rhrElevatedDelta {
		score -= 30
		reasons = append(reasons, fmt.Sprintf("RHR is up %.1f bpm vs 30d baseline.", *delta))
	}
	if avgSleep != nil && *avgSleep < lowSleepHours {
		score -= 25
		reasons = append(reasons, fmt.Sprintf("Recent sleep average is %.1fh.", *avgSleep))
	}
	if recentZone2 > recentZone2LoadLimit {
		score -= 15
		reasons = append(reasons, "High Zone2 load in the last 3 days.")
	}
	score = int(Clamp(float64(score), 0, 100))
	if len(reasons) == 0 {
		reasons = append(reasons, "RHR, sleep, and recent load look balanced.")
	}

	return RHRZone2Insights{
		Baseline: RHRBaseline{
			RHR7d:      Round1Ptr(rhr7d),
			RHR30d:     Round1Ptr(rhr30d),
			TodayRHR:   todayRHR,
			DeltaVs30d: Round1Ptr(delta),
			Status:     rhrStatus(delta),
		},
		Readiness: Readiness{
			Score:   score,
			Label:   readinessLabel(score),
			Reasons: reasons,
		},
		Planner: zone2Planner(completed, weeklyZone2, today),
	}
}

func rhrStatus(delta *float64) string {
	switch {
	case delta == nil:
		return RHRUnknown
	case *delta <= -2:
		return RHRImproving
	case *delta >= 2:
		return RHRElevated
	default:
		return RHRStable
	}
}

func readinessLabel(score int) string {
	switch {
	case score >= 75:
		return "High"
	case score >= 50:
		return "Moderate"
	default:
		return "Low"
	}
}

func zone2Planner(completed, weeklyZone2 int, today time.Time) Zone2Planner {
	remaining := max(0, TargetZone2Days-completed)
	weekEnd := AddDays(StartOfWeek(today), 6)
	remainingDays := max(1, DaysBetween(today, weekEnd)+1)

	perSession := 0
	if remaining > 0 {
		perSession = max(minSessionMinutes, int(math.Ceil(float64(weeklyZone2Goal-weeklyZone2)/float64(remaining))))
	}

	sessions := []Zone2Session{}
	for i := 0; i < min(remaining, remainingDays); i++ {
		sessions = append(sessions, Zone2Session{
			Day:     AddDays(today, i+1).Format("Mon"),
			Minutes: perSession,
		})
	}

	return Zone2Planner{
		TargetZone2Days:    TargetZone2Days,
		CompletedZone2Days: completed,
		RemainingDays:      remainingDays,
		SuggestedSessions:  sessions,
	}
}

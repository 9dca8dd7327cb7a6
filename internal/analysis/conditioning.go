package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"healthdash/internal/store"
)

// Conditioning defaults and thresholds
const (
	ConditioningDays         = 14
	DefaultTargetWorkoutDays = 4
	zone2LowMinutes          = 150
	zone2HighMinutes         = 300
	zone2PlanMinutes         = 180
	highIntensityDayMinutes  = 12
	maxHardPct               = 25
	maxSedentaryHours        = 12
	maxHighIntensityDays     = 3
	hardSessionCapMinutes    = 25
)

// Zone 2 status values
const (
	Zone2Low    = "low"
	Zone2Target = "target"
	Zone2High   = "high"
)

// ConditioningDay merges one day of activity, sleep and heart zone data
type ConditioningDay struct {
	Date                 time.Time
	ActiveMinutes        int
	SedentaryMinutes     int
	LightlyActiveMinutes int
	FairlyActiveMinutes  int
	VeryActiveMinutes    int
	MinutesAsleep        int
	Zone2Minutes         int
	CardioMinutes        int
	PeakMinutes          int
}

// ConditioningInput is the raw data for conditioning insights
type ConditioningInput struct {
	Days              []ConditioningDay
	WorkoutDays       int
	TargetWorkoutDays int
}

// ConditioningInsights is the conditioning payload
type ConditioningInsights struct {
	Weekly        ConditioningWeekly `json:"weekly"`
	Adherence     WorkoutAdherence   `json:"adherence"`
	PolarizedPlan PolarizedPlan      `json:"polarizedPlan"`
	CoachNotes    []string           `json:"coachNotes"`
}

// ConditioningWeekly aggregates the last 7 days of load
type ConditioningWeekly struct {
	ActiveMinutes         int     `json:"activeMinutes"`
	AvgDailyActiveMinutes int     `json:"avgDailyActiveMinutes"`
	SedentaryHours        float64 `json:"sedentaryHours"`
	Zone2Minutes          int     `json:"zone2Minutes"`
	HardMinutes           int     `json:"hardMinutes"`
	EasyMinutes           int     `json:"easyMinutes"`
	EasyPct               int     `json:"easyPct"`
	HardPct               int     `json:"hardPct"`
	HighIntensityDays     int     `json:"highIntensityDays"`
	Zone2Status           string  `json:"zone2Status"`
}

// WorkoutAdherence tracks workout days against the weekly target
type WorkoutAdherence struct {
	WorkoutDays          int `json:"workoutDays"`
	TargetWorkoutDays    int `json:"targetWorkoutDays"`
	AdherencePct         int `json:"adherencePct"`
	RemainingWorkoutDays int `json:"remainingWorkoutDays"`
}

// PolarizedPlan proposes the next three sessions
type PolarizedPlan struct {
	SuggestedEasyMinutes    int              `json:"suggestedEasyMinutes"`
	SuggestedHardMinutesCap int              `json:"suggestedHardMinutesCap"`
	Sessions                []PlannedWorkout `json:"sessions"`
}

// PlannedWorkout is one proposed session
type PlannedWorkout struct {
	Day     string `json:"day"`
	Type    string `json:"type"` // easy, hard
	Minutes int    `json:"minutes"`
}

// BuildConditioningInsights computes weekly load, polarization and a plan
func BuildConditioningInsights(in ConditioningInput, now time.Time) ConditioningInsights {
	target := in.TargetWorkoutDays
	if target <= 0 {
		target = DefaultTargetWorkoutDays
	}

	days := make([]ConditioningDay, len(in.Days))
	copy(days, in.Days)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	weekly := days
	if len(weekly) > 7 {
		weekly = weekly[len(weekly)-7:]
	}

	var active, zone2, hard, easy, sedentary, highDays int
	for _, d := range weekly {
		dayHard := d.CardioMinutes + d.PeakMinutes
		active += d.ActiveMinutes
		zone2 += d.Zone2Minutes
		hard += dayHard
		easy += d.LightlyActiveMinutes + d.Zone2Minutes
		sedentary += d.SedentaryMinutes
		if dayHard >= highIntensityDayMinutes {
			highDays++
		}
	}

	var sedentaryHours float64
	avgActive := 0
	if n := len(weekly); n > 0 {
		sedentaryHours = Round1(float64(sedentary) / float64(n) / 60)
		avgActive = RoundInt(float64(active) / float64(n))
	}
	load := float64(easy + hard)
	easyPct := Percent(float64(easy), load)
	hardPct := Percent(float64(hard), load)

	var notes []string
	if zone2 < zone2LowMinutes {
		notes = append(notes, fmt.Sprintf("Zone 2 volume is %dm this week. Push toward 150-300m for aerobic base.", zone2))
	}
	if hardPct > maxHardPct {
		notes = append(notes, fmt.Sprintf("Intensity split is %d/%d. Shift next sessions to easy effort to stay near 80/20.", easyPct, hardPct))
	}
	if sedentaryHours > maxSedentaryHours {
		notes = append(notes, fmt.Sprintf("Sedentary time is %sh/day. Add short movement breaks every 60-90 minutes.", formatNumber(sedentaryHours)))
	}
	if highDays > maxHighIntensityDays {
		notes = append(notes, "High-intensity load appears elevated this week. Keep hard days to 1-3 weekly.")
	}
	if len(notes) == 0 {
		notes = append(notes, "Conditioning load and intensity split look balanced. Keep your current pattern.")
	}

	return ConditioningInsights{
		Weekly: ConditioningWeekly{
			ActiveMinutes:         active,
			AvgDailyActiveMinutes: avgActive,
			SedentaryHours:        sedentaryHours,
			Zone2Minutes:          zone2,
			HardMinutes:           hard,
			EasyMinutes:           easy,
			EasyPct:               easyPct,
			HardPct:               hardPct,
			HighIntensityDays:     highDays,
			Zone2Status:           zone2Status(zone2),
		},
		Adherence: WorkoutAdherence{
			WorkoutDays:          in.WorkoutDays,
			TargetWorkoutDays:    target,
			AdherencePct:         min(100, Percent(float64(in.WorkoutDays), float64(target))),
			RemainingWorkoutDays: max(0, target-in.WorkoutDays),
		},
		PolarizedPlan: polarizedPlan(zone2, active, hard, Today(now)),
		CoachNotes:    notes,
	}
}

func zone2Status(total int) string {
	switch {
	case total < zone2LowMinutes:
		return Zone2Low
	case total > zone2HighMinutes:
		return Zone2High
	default:
		return Zone2Target
	}
}

func polarizedPlan(zone2, active, hard int, today time.Time) PolarizedPlan {
	easyMinutes := max(0, zone2PlanMinutes-zone2)
	hardCap := max(30, RoundInt(float64(active+hard)*0.2))
	half := int(math.Ceil(float64(easyMinutes) / 2))

	firstEasy, secondEasy := half, half
	if half == 0 {
		firstEasy, secondEasy = 30, 25
	}

	return PolarizedPlan{
		SuggestedEasyMinutes:    easyMinutes,
		SuggestedHardMinutesCap: hardCap,
		Sessions: []PlannedWorkout{
			{Day: AddDays(today, 1).Format("Mon"), Type: "easy", Minutes: max(30, firstEasy)},
			{Day: AddDays(today, 2).Format("Mon"), Type: "easy", Minutes: max(25, secondEasy)},
			{Day: AddDays(today, 3).Format("Mon"), Type: "hard", Minutes: min(hardSessionCapMinutes, hardCap)},
		},
	}
}

// MergeConditioningDays builds one ConditioningDay per date in the window,
// zero-filled where a source has no row. When a summary carries active minutes
// but no intensity split, the split defaults to 50/30/20.
func MergeConditioningDays(w Window, activity []store.DailyActivity, sleep []store.DailySleep, zones []store.DailyHeartZones) []ConditioningDay {
	byKey := make(map[string]*ConditioningDay)
	var days []ConditioningDay
	for _, d := range EnumerateDays(w.From, w.To) {
		days = append(days, ConditioningDay{Date: d})
	}
	for i := range days {
		byKey[DayKey(days[i].Date)] = &days[i]
	}

	for _, a := range activity {
		d, ok := byKey[DayKey(a.Date)]
		if !ok {
			continue
		}
		d.ActiveMinutes = a.ActiveMinutes
		d.SedentaryMinutes = a.SedentaryMinutes
		d.LightlyActiveMinutes = a.LightlyActiveMinutes
		d.FairlyActiveMinutes = a.FairlyActiveMinutes
		d.VeryActiveMinutes = a.VeryActiveMinutes
		if a.LightlyActiveMinutes+a.FairlyActiveMinutes+a.VeryActiveMinutes == 0 && a.ActiveMinutes > 0 {
			d.LightlyActiveMinutes = RoundInt(float64(a.ActiveMinutes) * 0.5)
			d.FairlyActiveMinutes = RoundInt(float64(a.ActiveMinutes) * 0.3)
			d.VeryActiveMinutes = max(0, a.ActiveMinutes-d.LightlyActiveMinutes-d.FairlyActiveMinutes)
		}
	}
	for _, s := range sleep {
		if d, ok := byKey[DayKey(s.Date)]; ok {
			d.MinutesAsleep = s.MinutesAsleep
		}
	}
	for _, z := range zones {
		if d, ok := byKey[DayKey(z.Date)]; ok {
			d.Zone2Minutes = z.Zone2Minutes
			d.CardioMinutes = z.CardioMinutes
			d.PeakMinutes = z.PeakMinutes
		}
	}
	return days
}

// CountWorkoutDays counts distinct days with a logged activity inside the window
func CountWorkoutDays(logs []store.ActivityLog, w Window) int {
	seen := make(map[string]struct{})
	for _, l := range logs {
		if w.Contains(l.StartTime) {
			seen[DayKey(l.StartTime)] = struct{}{}
		}
	}
	return len(seen)
}

// formatNumber prints a float without trailing zeros (12.0 -> "12")
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package analysis

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"healthdash/internal/store"
)

const (
	sleepNudgeGapHours = 0.15
	stepsNudgeGap      = 350
)

// GoalProgress tracks one weekly goal
type GoalProgress struct {
	Label     string  `json:"label"`
	Current   float64 `json:"current"`
	Target    float64 `json:"target"`
	Unit      string  `json:"unit"`
	Percent   int     `json:"percent"`
	Remaining float64 `json:"remaining"`
}

// GoalsPayload is the weekly goals view
type GoalsPayload struct {
	Goals    store.WeeklyGoals `json:"goals"`
	Progress []GoalProgress    `json:"progress"`
	Nudges   []string          `json:"nudges"`
}

func goalProgress(label, unit string, current, target float64) GoalProgress {
	p := GoalProgress{
		Label:     label,
		Current:   current,
		Target:    target,
		Unit:      unit,
		Remaining: math.Max(0, target-current),
	}
	if target > 0 {
		p.Percent = min(100, RoundInt(current/target*100))
	}
	return p
}

// BuildGoals measures the weekly summary against the user's goals
func BuildGoals(summary WeeklySummary, goals store.WeeklyGoals) GoalsPayload {
	zone2 := float64(summary.TotalZone2Minutes)
	sleep := summary.AverageSleepHours
	steps := float64(summary.AverageSteps)

	progress := []GoalProgress{
		goalProgress("Zone 2 this week", "m", zone2, float64(goals.Zone2TargetMinutes)),
		goalProgress("Avg sleep", "h", sleep, goals.AvgSleepTargetHours),
		goalProgress("Avg steps", "steps", steps, float64(goals.AvgStepsTarget)),
	}

	var nudges []string
	if gap := goals.Zone2TargetMinutes - summary.TotalZone2Minutes; gap > 0 {
		nudges = append(nudges, fmt.Sprintf("Need %d more Zone 2 minutes this week. Try 2 to 3 brisk sessions.", gap))
	}
	if gap := goals.AvgSleepTargetHours - summary.AverageSleepHours; gap > sleepNudgeGapHours {
		nudges = append(nudges, fmt.Sprintf("Add about %d minutes/night to hit your sleep goal.", RoundInt(gap*60)))
	}
	if gap := goals.AvgStepsTarget - summary.AverageSteps; gap > stepsNudgeGap {
		nudges = append(nudges, fmt.Sprintf("Increase by about %s steps/day to reach your weekly step target.", humanize.Comma(int64(gap))))
	}
	if len(nudges) == 0 {
		nudges = append(nudges, "All weekly goals are on track. Keep your routine consistent.")
	}

	return GoalsPayload{Goals: goals, Progress: progress, Nudges: nudges}
}

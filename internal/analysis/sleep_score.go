package analysis

import (
	"math"
	"strings"

	"healthdash/internal/store"
)

// ScoreMode selects the sleep score weighting
type ScoreMode string

const (
	ModeFitbit   ScoreMode = "fitbit"
	ModeRecovery ScoreMode = "recovery"
)

// DefaultSleepGoalHours is used when no positive goal is given
const DefaultSleepGoalHours = 8.0

// ParseScoreMode normalizes a mode name, defaulting to fitbit
func ParseScoreMode(s string) ScoreMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeRecovery)) {
		return ModeRecovery
	}
	return ModeFitbit
}

// ScoreWeights are the maximum points for each component
type ScoreWeights struct {
	Duration    float64
	Depth       float64
	Restoration float64
}

// Weights returns the component weights for a mode. Both sets sum to 100.
func (m ScoreMode) Weights() ScoreWeights {
	if m == ModeRecovery {
		return ScoreWeights{Duration: 35, Depth: 20, Restoration: 45}
	}
	return ScoreWeights{Duration: 50, Depth: 25, Restoration: 25}
}

// SleepScoreInput holds the nightly signals used for scoring
type SleepScoreInput struct {
	MinutesAsleep float64
	TimeInBed     float64
	Efficiency    float64
	DeepMinutes   float64
	RemMinutes    float64
	WakeMinutes   float64
}

// SleepScoreBreakdown is the scored night. Total == Duration+Depth+Restoration.
type SleepScoreBreakdown struct {
	Duration    int `json:"duration"`
	Depth       int `json:"depth"`
	Restoration int `json:"restoration"`
	Total       int `json:"total"`
}

// SleepScoreDetailed scores a night of sleep from 0 to 100
func SleepScoreDetailed(in SleepScoreInput, goalHours float64, mode ScoreMode) SleepScoreBreakdown {
	if goalHours <= 0 || math.IsNaN(goalHours) {
		goalHours = DefaultSleepGoalHours
	}
	goalMinutes := math.Max(1, Round(goalHours*60))

	asleep := math.Max(0, in.MinutesAsleep)
	wake := math.Max(0, in.WakeMinutes)
	inBed := in.TimeInBed
	if inBed == 0 {
		inBed = in.MinutesAsleep + in.WakeMinutes
	}
	inBed = math.Max(1, inBed)

	durationGoal := Clamp(asleep/goalMinutes, 0, 1)
	asleepVsAwake := Clamp(1-wake/inBed, 0, 1)
	qualityRatio := (math.Max(0, in.DeepMinutes) + math.Max(0, in.RemMinutes)) / math.Max(1, asleep)
	efficiencyNorm := Clamp(in.Efficiency/100, 0, 1)
	restlessnessNorm := Clamp(1-wake/inBed, 0, 1)

	w := mode.Weights()
	duration := RoundInt(w.Duration * Clamp(durationGoal*0.8+asleepVsAwake*0.2, 0, 1))
	depth := RoundInt(w.Depth * Clamp(qualityRatio/0.5, 0, 1))
	restoration := RoundInt(w.Restoration * Clamp(efficiencyNorm*0.65+restlessnessNorm*0.35, 0, 1))

	return SleepScoreBreakdown{
		Duration:    duration,
		Depth:       depth,
		Restoration: restoration,
		Total:       int(Clamp(float64(duration+depth+restoration), 0, 100)),
	}
}

// SleepScore returns only the total score
func SleepScore(in SleepScoreInput, goalHours float64, mode ScoreMode) int {
	return SleepScoreDetailed(in, goalHours, mode).Total
}

// SleepInputFromRecord converts a stored night, treating missing stages as 0
func SleepInputFromRecord(s store.DailySleep) SleepScoreInput {
	return SleepScoreInput{
		MinutesAsleep: float64(s.MinutesAsleep),
		TimeInBed:     float64(s.TimeInBed),
		Efficiency:    float64(s.Efficiency),
		DeepMinutes:   float64(intOrZero(s.DeepMinutes)),
		RemMinutes:    float64(intOrZero(s.RemMinutes)),
		WakeMinutes:   float64(intOrZero(s.WakeMinutes)),
	}
}

// ScoreNight scores a stored sleep record
func ScoreNight(s store.DailySleep, goalHours float64, mode ScoreMode) SleepScoreBreakdown {
	return SleepScoreDetailed(SleepInputFromRecord(s), goalHours, mode)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

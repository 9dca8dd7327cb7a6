package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Correlation thresholds
const (
	CorrelationHistoryDays = 90
	minCorrelationSamples  = 8
	minAbsCorrelation      = 0.15
)

// CorrelationInsight describes a relationship between two daily series
type CorrelationInsight struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Detail     string  `json:"detail"`
	R          float64 `json:"r"`
	Confidence string  `json:"confidence"` // low, medium, high
	Direction  string  `json:"direction"`  // positive, negative
	SampleSize int     `json:"sampleSize"`
}

// Pearson returns the correlation coefficient of paired samples, or nil when
// there are fewer than 8 pairs or either series has no variance.
func Pearson(xs, ys []float64) *float64 {
	n := min(len(xs), len(ys))
	if n < minCorrelationSamples {
		return nil
	}

	var sx, sy float64
	for i := 0; i < n; i++ {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/float64(n), sy/float64(n)

	var num, ssx, ssy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		num += dx * dy
		ssx += dx * dx
		ssy += dy * dy
	}
	if ssx == 0 || ssy == 0 {
		return nil
	}
	r := num / math.Sqrt(ssx*ssy)
	if math.IsNaN(r) {
		return nil
	}
	return &r
}

func correlationConfidence(absR float64, n int) string {
	switch {
	case n >= 45 && absR >= 0.45:
		return "high"
	case n >= 20 && absR >= 0.25:
		return "medium"
	default:
		return "low"
	}
}

func buildCorrelation(id, title, xLabel, yLabel string, xs, ys []float64) *CorrelationInsight {
	r := Pearson(xs, ys)
	if r == nil || math.Abs(*r) < minAbsCorrelation {
		return nil
	}

	n := min(len(xs), len(ys))
	direction, relation := "positive", "increase together"
	if *r < 0 {
		direction, relation = "negative", "move in opposite directions"
	}
	return &CorrelationInsight{
		ID:         id,
		Title:      title,
		Detail:     fmt.Sprintf("%s and %s %s (r=%.2f, n=%d).", xLabel, yLabel, relation, *r, n),
		R:          *r,
		Confidence: correlationConfidence(math.Abs(*r), n),
		Direction:  direction,
		SampleSize: n,
	}
}

// BuildCorrelationInsights pairs sleep, steps, zone 2 and resting HR by date
// and keeps the relationships with a usable signal, strongest first.
func BuildCorrelationInsights(days []DayMetrics) []CorrelationInsight {
	var sleepStepsX, sleepStepsY, sleepZone2X, sleepZone2Y, zone2HRX, zone2HRY []float64
	for _, d := range days {
		if d.SleepHours != nil && d.Steps != nil {
			sleepStepsX = append(sleepStepsX, *d.SleepHours)
			sleepStepsY = append(sleepStepsY, float64(*d.Steps))
		}
		if d.SleepHours != nil && d.Zone2 != nil {
			sleepZone2X = append(sleepZone2X, *d.SleepHours)
			sleepZone2Y = append(sleepZone2Y, float64(*d.Zone2))
		}
		if d.Zone2 != nil && d.RestingHR != nil {
			zone2HRX = append(zone2HRX, float64(*d.Zone2))
			zone2HRY = append(zone2HRY, float64(*d.RestingHR))
		}
	}

	candidates := []*CorrelationInsight{
		buildCorrelation("sleep-steps", "Sleep vs Steps", "sleep duration", "daily steps", sleepStepsX, sleepStepsY),
		buildCorrelation("sleep-zone2", "Sleep vs Zone 2", "sleep duration", "zone 2 minutes", sleepZone2X, sleepZone2Y),
		buildCorrelation("zone2-rhr", "Zone 2 vs Resting HR", "zone 2 minutes", "resting heart rate", zone2HRX, zone2HRY),
	}

	var insights []CorrelationInsight
	for _, c := range candidates {
		if c != nil {
			insights = append(insights, *c)
		}
	}
	if len(insights) == 0 {
		return []CorrelationInsight{{
			ID:         "insufficient-data",
			Title:      "Not enough stable signal yet",
			Detail:     "Keep syncing daily. Correlation insights unlock once there is enough variation and sample size.",
			Confidence: "low",
			Direction:  "positive",
			SampleSize: len(days),
		}}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return math.Abs(insights[i].R) > math.Abs(insights[j].R)
	})
	return insights
}

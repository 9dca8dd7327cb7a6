package analysis

import (
	"math"
	"sort"
	"time"
)

// Average returns the arithmetic mean, 0 for empty input
func Average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// AverageOrNil returns the mean, or nil when there are no samples
func AverageOrNil(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	avg := Average(xs)
	return &avg
}

// StdDev returns the population standard deviation, 0 for fewer than 2 samples
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Average(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// Sum adds up the values
func Sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// Round rounds half up (2.5 -> 3, -2.5 -> -2)
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundInt rounds half up and converts to int
func RoundInt(x float64) int {
	return int(Round(x))
}

// Round1 rounds to one decimal place
func Round1(x float64) float64 {
	return Round(x*10) / 10
}

// Round1Ptr rounds a nullable value to one decimal place
func Round1Ptr(x *float64) *float64 {
	if x == nil {
		return nil
	}
	v := Round1(*x)
	return &v
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Percent returns part as a rounded percentage of total, 0 if total is 0
func Percent(part, total float64) int {
	if total == 0 {
		return 0
	}
	return RoundInt(part / total * 100)
}

// DaySeries maps day keys (YYYY-MM-DD) to a daily value. A missing key means
// no data for that day.
type DaySeries map[string]float64

// CurrentStreak counts consecutive days ending today whose value meets target.
// A missing day breaks the streak. The walk stops after maxDays.
func CurrentStreak(values DaySeries, target float64, today time.Time, maxDays int) int {
	streak := 0
	for i := 0; i < maxDays; i++ {
		v, ok := values[DayKey(AddDays(today, -i))]
		if !ok || v < target {
			break
		}
		streak++
	}
	return streak
}

// BestStreak returns the longest run of calendar-consecutive days meeting target
// over the full history. A gap in dates ends a run even if both sides qualify.
func BestStreak(values DaySeries, target float64) int {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, current := 0, 0
	var prev time.Time
	for _, k := range keys {
		day, err := ParseDayKey(k)
		if err != nil {
			continue
		}
		if values[k] < target {
			current = 0
			prev = day
			continue
		}
		if current > 0 && DaysBetween(prev, day) == 1 {
			current++
		} else {
			current = 1
		}
		if current > best {
			best = current
		}
		prev = day
	}
	return best
}

// TrendMetric compares a current value against its baseline
type TrendMetric struct {
	Current  float64  `json:"current"`
	Baseline float64  `json:"baseline"`
	Delta    float64  `json:"delta"`
	DeltaPct *float64 `json:"deltaPct"` // nil when baseline is 0
}

// NewTrendMetric builds a TrendMetric from current and baseline values
func NewTrendMetric(current, baseline float64) TrendMetric {
	m := TrendMetric{
		Current:  current,
		Baseline: baseline,
		Delta:    current - baseline,
	}
	if baseline != 0 {
		pct := m.Delta / baseline * 100
		m.DeltaPct = &pct
	}
	return m
}

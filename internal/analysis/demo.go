package analysis

import (
	"fmt"
	"math"
	"time"

	"healthdash/internal/store"
)

// DemoUserID owns every synthetic row
const DemoUserID = "demo"

// DemoHistoryDays is how much synthetic history DemoCalendar generates by default
const DemoHistoryDays = TrendHistoryDays

// DemoCalendar generates deterministic synthetic rows for the days days
// ending today. Values are driven by the day of month so the same date always
// produces the same numbers. Recovery biomarkers cover only the last 30 days.
func DemoCalendar(now time.Time, days int) DailyRows {
	if days <= 0 {
		days = DemoHistoryDays
	}
	today := Today(now)
	window := NewWindow(today, days)

	var rows DailyRows
	for _, d := range EnumerateDays(window.From, window.To) {
		idx := d.Day()

		zone2 := (idx * 7) % 72
		steps := 4500 + (idx*631)%9000
		active := 32 + (idx*3)%58
		asleep := 340 + (idx*13)%140
		very := RoundInt(float64(active) * 0.18)
		fairly := RoundInt(float64(active) * 0.27)
		rhr := 56 + idx%6

		rows.Activity = append(rows.Activity, store.DailyActivity{
			UserID:               DemoUserID,
			Date:                 d,
			Steps:                steps,
			ActiveMinutes:        active,
			SedentaryMinutes:     max(0, minutesPerDay-asleep-active),
			LightlyActiveMinutes: max(0, active-very-fairly),
			FairlyActiveMinutes:  fairly,
			VeryActiveMinutes:    very,
		})

		start := d.Add(22*time.Hour + 45*time.Minute)
		end := AddDays(d, 1).Add(6*time.Hour + 45*time.Minute)
		rows.Sleep = append(rows.Sleep, store.DailySleep{
			UserID:        DemoUserID,
			Date:          d,
			MinutesAsleep: asleep,
			TimeInBed:     asleep + 42,
			Efficiency:    91,
			DeepMinutes:   intPtr(RoundInt(float64(asleep) * 0.18)),
			RemMinutes:    intPtr(RoundInt(float64(asleep) * 0.22)),
			LightMinutes:  intPtr(RoundInt(float64(asleep) * 0.53)),
			WakeMinutes:   intPtr(RoundInt(float64(asleep) * 0.07)),
			SleepStart:    &start,
			SleepEnd:      &end,
		})

		rows.Zones = append(rows.Zones, store.DailyHeartZones{
			UserID:            DemoUserID,
			Date:              d,
			Zone2Minutes:      zone2,
			CardioMinutes:     max(0, zone2-18),
			PeakMinutes:       max(0, zone2/4-2),
			OutOfRangeMinutes: 80 + idx%20,
			RestingHeartRate:  intPtr(rhr),
		})

		if idx%2 == 0 {
			rows.Logs = append(rows.Logs, store.ActivityLog{
				ID:              fmt.Sprintf("%s-a", DayKey(d)),
				UserID:          DemoUserID,
				Date:            d,
				StartTime:       d.Add(7 * time.Hour),
				DurationMinutes: 38,
				Name:            "Brisk Walk",
				Calories:        intPtr(240),
				Distance:        floatPtr(3.4),
				Steps:           intPtr(4500),
			})
		}
	}

	recovery := NewWindow(today, min(days, RecoveryHistoryDays))
	for i, d := range EnumerateDays(recovery.From, recovery.To) {
		x := float64(i)
		rows.Recovery = append(rows.Recovery, store.DailyRecovery{
			UserID:             DemoUserID,
			Date:               d,
			CardioFitnessScore: floatPtr(42 + float64(i%4)),
			Vo2Max:             floatPtr(39 + math.Mod(x*0.2, 2)),
			HrvRmssd:           floatPtr(45 + float64((i*2)%12)),
			BreathingRate:      floatPtr(14 + math.Mod(x*0.1, 1)),
			Spo2Avg:            floatPtr(96 + math.Mod(x*0.1, 1)),
			SkinTempC:          floatPtr(-0.2 + math.Mod(x*0.03, 0.4)),
			CoreTempC:          floatPtr(36.6 + math.Mod(x*0.02, 0.3)),
		})
	}
	return rows
}

// Between returns the rows whose date falls inside w
func (r DailyRows) Between(w Window) DailyRows {
	var out DailyRows
	for _, a := range r.Activity {
		if w.Contains(a.Date) {
			out.Activity = append(out.Activity, a)
		}
	}
	for _, s := range r.Sleep {
		if w.Contains(s.Date) {
			out.Sleep = append(out.Sleep, s)
		}
	}
	for _, z := range r.Zones {
		if w.Contains(z.Date) {
			out.Zones = append(out.Zones, z)
		}
	}
	for _, rec := range r.Recovery {
		if w.Contains(rec.Date) {
			out.Recovery = append(out.Recovery, rec)
		}
	}
	for _, l := range r.Logs {
		if w.Contains(l.StartTime) {
			out.Logs = append(out.Logs, l)
		}
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

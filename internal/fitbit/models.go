package fitbit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActivitySummaryResponse is /1/user/-/activities/date/{date}.json
type ActivitySummaryResponse struct {
	Summary *ActivitySummary `json:"summary"`
}

// ActivitySummary holds the day's totals
type ActivitySummary struct {
	Steps                int  `json:"steps"`
	SedentaryMinutes     int  `json:"sedentaryMinutes"`
	LightlyActiveMinutes int  `json:"lightlyActiveMinutes"`
	FairlyActiveMinutes  int  `json:"fairlyActiveMinutes"`
	VeryActiveMinutes    int  `json:"veryActiveMinutes"`
	CaloriesOut          *int `json:"caloriesOut"`
}

// SleepResponse is /1.2/user/-/sleep/date/{date}.json
type SleepResponse struct {
	Sleep   []SleepLog    `json:"sleep"`
	Summary *SleepSummary `json:"summary"`
}

// SleepLog is one sleep session
type SleepLog struct {
	StartTime     string `json:"startTime"` // local time, no offset
	EndTime       string `json:"endTime"`
	Efficiency    int    `json:"efficiency"`
	MinutesAsleep int    `json:"minutesAsleep"`
	TimeInBed     int    `json:"timeInBed"`
	IsMainSleep   bool   `json:"isMainSleep"`
}

// SleepSummary aggregates every session for the date
type SleepSummary struct {
	TotalMinutesAsleep *int         `json:"totalMinutesAsleep"`
	TotalTimeInBed     *int         `json:"totalTimeInBed"`
	Stages             *SleepStages `json:"stages"`
}

// SleepStages are minutes per stage; absent for classic (non-stage) logs
type SleepStages struct {
	Deep  *int `json:"deep"`
	Light *int `json:"light"`
	Rem   *int `json:"rem"`
	Wake  *int `json:"wake"`
}

// MainSleep returns the main sleep session, or the first one if none is flagged
func (r *SleepResponse) MainSleep() *SleepLog {
	for i := range r.Sleep {
		if r.Sleep[i].IsMainSleep {
			return &r.Sleep[i]
		}
	}
	if len(r.Sleep) > 0 {
		return &r.Sleep[0]
	}
	return nil
}

// HeartResponse is /1/user/-/activities/heart/date/{date}/1d.json
type HeartResponse struct {
	ActivitiesHeart []struct {
		DateTime string     `json:"dateTime"`
		Value    HeartValue `json:"value"`
	} `json:"activities-heart"`
}

// HeartValue holds zones and resting heart rate
type HeartValue struct {
	RestingHeartRate *int        `json:"restingHeartRate"`
	HeartRateZones   []HeartZone `json:"heartRateZones"`
}

// HeartZone is minutes spent in a named zone
type HeartZone struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
}

// Zone names as returned by Fitbit
const (
	ZoneOutOfRange = "Out of Range"
	ZoneFatBurn    = "Fat Burn"
	ZoneCardio     = "Cardio"
	ZonePeak       = "Peak"
)

// Value returns the first day's heart data
func (r *HeartResponse) Value() *HeartValue {
	if len(r.ActivitiesHeart) == 0 {
		return nil
	}
	return &r.ActivitiesHeart[0].Value
}

// ZoneMinutes returns minutes for the named zone, 0 when missing
func (v *HeartValue) ZoneMinutes(name string) int {
	for _, z := range v.HeartRateZones {
		if z.Name == name {
			return z.Minutes
		}
	}
	return 0
}

// CardioScoreResponse is /1/user/-/cardioscore/date/{date}.json
type CardioScoreResponse struct {
	CardioScore []struct {
		Value struct {
			Vo2Max             *FlexFloat `json:"vo2Max"`
			CardioFitnessScore *FlexFloat `json:"cardioFitnessScore"`
		} `json:"value"`
	} `json:"cardioScore"`
}

// FlexFloat decodes a number, a numeric string, or a "low-high" range string.
// Ranges decode to their midpoint; Fitbit reports VO2 max as a range without GPS runs.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	lo, hi, isRange := strings.Cut(s, "-")
	a, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return fmt.Errorf("flex float %q: %w", s, err)
	}
	if !isRange {
		*f = FlexFloat(a)
		return nil
	}
	b2, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return fmt.Errorf("flex float %q: %w", s, err)
	}
	*f = FlexFloat((a + b2) / 2)
	return nil
}

// Ptr returns the value as a *float64, nil for a nil receiver
func (f *FlexFloat) Ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// HRVResponse is /1/user/-/hrv/date/{date}.json
type HRVResponse struct {
	HRV []struct {
		Value struct {
			DailyRmssd *float64 `json:"dailyRmssd"`
			DeepRmssd  *float64 `json:"deepRmssd"`
		} `json:"value"`
	} `json:"hrv"`
}

// BreathingRateResponse is /1/user/-/br/date/{date}.json
type BreathingRateResponse struct {
	BR []struct {
		Value struct {
			BreathingRate *float64 `json:"breathingRate"`
		} `json:"value"`
	} `json:"br"`
}

// SpO2Response is /1/user/-/spo2/date/{date}.json
type SpO2Response struct {
	Value *struct {
		Avg *float64 `json:"avg"`
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"value"`
}

// TempResponse is /1/user/-/temp/{skin,core}/date/{date}.json
type TempResponse struct {
	TempSkin []struct {
		Value struct {
			NightlyRelative *float64 `json:"nightlyRelative"`
		} `json:"value"`
	} `json:"tempSkin"`
	TempCore []struct {
		Value *float64 `json:"value"`
	} `json:"tempCore"`
}

// ActivityListResponse is /1/user/-/activities/list.json
type ActivityListResponse struct {
	Activities []LoggedActivity `json:"activities"`
}

// LoggedActivity is one entry from the activity log list
type LoggedActivity struct {
	LogID        int64    `json:"logId"`
	ActivityName string   `json:"activityName"`
	StartTime    string   `json:"startTime"` // RFC 3339 with offset
	Duration     int64    `json:"duration"`  // milliseconds
	Calories     *int     `json:"calories"`
	Steps        *int     `json:"steps"`
	Distance     *float64 `json:"distance"`
}

// Fitbit timestamps come with or without a UTC offset
var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// ParseTime parses a Fitbit timestamp. Times without an offset are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized fitbit time %q", s)
}

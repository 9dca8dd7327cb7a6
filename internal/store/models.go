package store

import "time"

// Auth represents OAuth tokens for Fitbit API access
type Auth struct {
	FitbitUserID string    `db:"fitbit_user_id" json:"fitbitUserId"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	Scope        string    `db:"scope" json:"scope"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
}

// DailyActivity is the per-day activity summary
type DailyActivity struct {
	UserID               string    `db:"user_id" json:"userId"`
	Date                 time.Time `db:"date" json:"date"`
	Steps                int       `db:"steps" json:"steps"`
	ActiveMinutes        int       `db:"active_minutes" json:"activeMinutes"`
	SedentaryMinutes     int       `db:"sedentary_minutes" json:"sedentaryMinutes"`
	LightlyActiveMinutes int       `db:"lightly_active_minutes" json:"lightlyActiveMinutes"`
	FairlyActiveMinutes  int       `db:"fairly_active_minutes" json:"fairlyActiveMinutes"`
	VeryActiveMinutes    int       `db:"very_active_minutes" json:"veryActiveMinutes"`
	CaloriesOut          *int      `db:"calories_out" json:"caloriesOut"` // nullable
}

// DailySleep is the main sleep record for a night, keyed by wake date
type DailySleep struct {
	UserID        string     `db:"user_id" json:"userId"`
	Date          time.Time  `db:"date" json:"date"`
	MinutesAsleep int        `db:"minutes_asleep" json:"minutesAsleep"`
	TimeInBed     int        `db:"time_in_bed" json:"timeInBed"`
	Efficiency    int        `db:"efficiency" json:"efficiency"` // 0-100
	DeepMinutes   *int       `db:"deep_minutes" json:"deepMinutes"`
	RemMinutes    *int       `db:"rem_minutes" json:"remMinutes"`
	LightMinutes  *int       `db:"light_minutes" json:"lightMinutes"`
	WakeMinutes   *int       `db:"wake_minutes" json:"wakeMinutes"`
	SleepStart    *time.Time `db:"sleep_start" json:"sleepStart"`
	SleepEnd      *time.Time `db:"sleep_end" json:"sleepEnd"`
}

// DailyHeartZones holds minutes per heart rate zone and resting HR
type DailyHeartZones struct {
	UserID            string    `db:"user_id" json:"userId"`
	Date              time.Time `db:"date" json:"date"`
	Zone2Minutes      int       `db:"zone2_minutes" json:"zone2Minutes"` // "Fat Burn"
	CardioMinutes     int       `db:"cardio_minutes" json:"cardioMinutes"`
	PeakMinutes       int       `db:"peak_minutes" json:"peakMinutes"`
	OutOfRangeMinutes int       `db:"out_of_range_minutes" json:"outOfRangeMinutes"`
	RestingHeartRate  *int      `db:"resting_heart_rate" json:"restingHeartRate"` // nullable
}

// DailyRecovery holds premium biomarkers; every field is independently nullable
type DailyRecovery struct {
	UserID             string    `db:"user_id" json:"userId"`
	Date               time.Time `db:"date" json:"date"`
	CardioFitnessScore *float64  `db:"cardio_fitness_score" json:"cardioFitnessScore"`
	Vo2Max             *float64  `db:"vo2_max" json:"vo2Max"`
	HrvRmssd           *float64  `db:"hrv_rmssd" json:"hrvRmssd"`
	HrvDeepRmssd       *float64  `db:"hrv_deep_rmssd" json:"hrvDeepRmssd"`
	BreathingRate      *float64  `db:"breathing_rate" json:"breathingRate"`
	Spo2Avg            *float64  `db:"spo2_avg" json:"spo2Avg"`
	Spo2Min            *float64  `db:"spo2_min" json:"spo2Min"`
	Spo2Max            *float64  `db:"spo2_max" json:"spo2Max"`
	SkinTempC          *float64  `db:"skin_temp_c" json:"skinTempC"`
	CoreTempC          *float64  `db:"core_temp_c" json:"coreTempC"`
}

// ActivityLog is a single logged workout or walk
type ActivityLog struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	Date            time.Time `db:"date" json:"date"`
	StartTime       time.Time `db:"start_time" json:"startTime"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Name            string    `db:"name" json:"name"`
	Calories        *int      `db:"calories" json:"calories"`
	Distance        *float64  `db:"distance" json:"distance"`
	Steps           *int      `db:"steps" json:"steps"`
}

// AlertPreference holds a user's alert thresholds
type AlertPreference struct {
	UserID            string  `db:"user_id" json:"userId"`
	MinSleepHours     float64 `db:"min_sleep_hours" json:"minSleepHours" validate:"min=0,max=24"`
	MinAvgSteps       int     `db:"min_avg_steps" json:"minAvgSteps" validate:"min=0,max=100000"`
	MinZone2Days      int     `db:"min_zone2_days" json:"minZone2Days" validate:"min=0,max=7"`
	MaxRestingHRDelta float64 `db:"max_resting_hr_delta" json:"maxRestingHrDelta" validate:"min=0,max=40"`
	AlertsEnabled     bool    `db:"alerts_enabled" json:"alertsEnabled"`
}

// AlertEvent is a persisted alert; at most one per (user, day, type)
type AlertEvent struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	DayKey     string     `db:"day_key" json:"dayKey"`
	Type       string     `db:"type" json:"type"`
	Severity   string     `db:"severity" json:"severity"` // low, medium, high
	Message    string     `db:"message" json:"message"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolvedAt"`
}

// WeeklyGoals holds a user's weekly coaching targets
type WeeklyGoals struct {
	UserID              string  `db:"user_id" json:"userId"`
	Zone2TargetMinutes  int     `db:"zone2_target_minutes" json:"zone2TargetMinutes" validate:"min=0,max=2000"`
	AvgSleepTargetHours float64 `db:"avg_sleep_target_hours" json:"avgSleepTargetHours" validate:"min=0,max=24"`
	AvgStepsTarget      int     `db:"avg_steps_target" json:"avgStepsTarget" validate:"min=0,max=100000"`
	SleepScoreMode      string  `db:"sleep_score_mode" json:"sleepScoreMode" validate:"oneof=fitbit recovery"`
}

// SyncRun records one sync attempt series
type SyncRun struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	Trigger    string     `db:"trigger_kind" json:"trigger"` // manual, auto
	Status     string     `db:"status" json:"status"`  // RUNNING, SUCCESS, PARTIAL, FAILED
	FromDate   string     `db:"from_date" json:"fromDate"`
	ToDate     string     `db:"to_date" json:"toDate"`
	SyncedDays int        `db:"synced_days" json:"syncedDays"`
	Attempts   int        `db:"attempts" json:"attempts"`
	Warnings   string     `db:"warnings" json:"warnings"`
	LastError  string     `db:"last_error" json:"lastError"`
	StartedAt  time.Time  `db:"started_at" json:"startedAt"`
	EndedAt    *time.Time `db:"ended_at" json:"endedAt"`
}

// Sync run statuses
const (
	SyncRunning = "RUNNING"
	SyncSuccess = "SUCCESS"
	SyncPartial = "PARTIAL"
	SyncFailed  = "FAILED"
)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

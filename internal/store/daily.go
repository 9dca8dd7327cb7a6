package store

import (
	"context"
	"database/sql"
)

// UpsertDailyActivity inserts or replaces a day's activity summary
func (db *DB) UpsertDailyActivity(ctx context.Context, a DailyActivity) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_activity (user_id, date, steps, active_minutes, sedentary_minutes,
			lightly_active_minutes, fairly_active_minutes, very_active_minutes, calories_out, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, date) DO UPDATE SET
			steps = excluded.steps,
			active_minutes = excluded.active_minutes,
			sedentary_minutes = excluded.sedentary_minutes,
			lightly_active_minutes = excluded.lightly_active_minutes,
			fairly_active_minutes = excluded.fairly_active_minutes,
			very_active_minutes = excluded.very_active_minutes,
			calories_out = excluded.calories_out,
			updated_at = CURRENT_TIMESTAMP
	`, a.UserID, formatDate(a.Date), a.Steps, a.ActiveMinutes, a.SedentaryMinutes,
		a.LightlyActiveMinutes, a.FairlyActiveMinutes, a.VeryActiveMinutes, a.CaloriesOut)
	return err
}

// GetDailyActivity returns activity summaries for from..to inclusive, oldest first
func (db *DB) GetDailyActivity(ctx context.Context, userID string, r DateRange) ([]DailyActivity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, date, steps, active_minutes, sedentary_minutes,
			lightly_active_minutes, fairly_active_minutes, very_active_minutes, calories_out
		FROM daily_activity
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, userID, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, fetchErr("daily activity", err)
	}
	defer rows.Close()

	var out []DailyActivity
	for rows.Next() {
		var a DailyActivity
		var date string
		if err := rows.Scan(&a.UserID, &date, &a.Steps, &a.ActiveMinutes, &a.SedentaryMinutes,
			&a.LightlyActiveMinutes, &a.FairlyActiveMinutes, &a.VeryActiveMinutes, &a.CaloriesOut); err != nil {
			return nil, fetchErr("daily activity", err)
		}
		if a.Date, err = parseDate(date); err != nil {
			return nil, fetchErr("daily activity", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("daily activity", err)
	}
	return out, nil
}

// UpsertDailySleep inserts or replaces a night's main sleep
func (db *DB) UpsertDailySleep(ctx context.Context, s DailySleep) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_sleep (user_id, date, minutes_asleep, time_in_bed, efficiency,
			deep_minutes, rem_minutes, light_minutes, wake_minutes, sleep_start, sleep_end, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, date) DO UPDATE SET
			minutes_asleep = excluded.minutes_asleep,
			time_in_bed = excluded.time_in_bed,
			efficiency = excluded.efficiency,
			deep_minutes = excluded.deep_minutes,
			rem_minutes = excluded.rem_minutes,
			light_minutes = excluded.light_minutes,
			wake_minutes = excluded.wake_minutes,
			sleep_start = excluded.sleep_start,
			sleep_end = excluded.sleep_end,
			updated_at = CURRENT_TIMESTAMP
	`, s.UserID, formatDate(s.Date), s.MinutesAsleep, s.TimeInBed, s.Efficiency,
		s.DeepMinutes, s.RemMinutes, s.LightMinutes, s.WakeMinutes,
		formatNullTime(s.SleepStart), formatNullTime(s.SleepEnd))
	return err
}

// GetDailySleep returns sleep rows for from..to inclusive, oldest first
func (db *DB) GetDailySleep(ctx context.Context, userID string, r DateRange) ([]DailySleep, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, date, minutes_asleep, time_in_bed, efficiency,
			deep_minutes, rem_minutes, light_minutes, wake_minutes, sleep_start, sleep_end
		FROM daily_sleep
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, userID, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, fetchErr("daily sleep", err)
	}
	defer rows.Close()

	var out []DailySleep
	for rows.Next() {
		var s DailySleep
		var date string
		var start, end sql.NullString
		if err := rows.Scan(&s.UserID, &date, &s.MinutesAsleep, &s.TimeInBed, &s.Efficiency,
			&s.DeepMinutes, &s.RemMinutes, &s.LightMinutes, &s.WakeMinutes, &start, &end); err != nil {
			return nil, fetchErr("daily sleep", err)
		}
		if s.Date, err = parseDate(date); err != nil {
			return nil, fetchErr("daily sleep", err)
		}
		if s.SleepStart, err = parseNullTime(start); err != nil {
			return nil, fetchErr("daily sleep", err)
		}
		if s.SleepEnd, err = parseNullTime(end); err != nil {
			return nil, fetchErr("daily sleep", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("daily sleep", err)
	}
	return out, nil
}

// UpsertDailyHeartZones inserts or replaces a day's heart rate zones
func (db *DB) UpsertDailyHeartZones(ctx context.Context, z DailyHeartZones) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_heart_zones (user_id, date, zone2_minutes, cardio_minutes, peak_minutes,
			out_of_range_minutes, resting_heart_rate, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, date) DO UPDATE SET
			zone2_minutes = excluded.zone2_minutes,
			cardio_minutes = excluded.cardio_minutes,
			peak_minutes = excluded.peak_minutes,
			out_of_range_minutes = excluded.out_of_range_minutes,
			resting_heart_rate = excluded.resting_heart_rate,
			updated_at = CURRENT_TIMESTAMP
	`, z.UserID, formatDate(z.Date), z.Zone2Minutes, z.CardioMinutes, z.PeakMinutes,
		z.OutOfRangeMinutes, z.RestingHeartRate)
	return err
}

// GetDailyHeartZones returns heart zone rows for from..to inclusive, oldest first
func (db *DB) GetDailyHeartZones(ctx context.Context, userID string, r DateRange) ([]DailyHeartZones, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, date, zone2_minutes, cardio_minutes, peak_minutes,
			out_of_range_minutes, resting_heart_rate
		FROM daily_heart_zones
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, userID, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, fetchErr("heart zones", err)
	}
	defer rows.Close()

	var out []DailyHeartZones
	for rows.Next() {
		var z DailyHeartZones
		var date string
		if err := rows.Scan(&z.UserID, &date, &z.Zone2Minutes, &z.CardioMinutes, &z.PeakMinutes,
			&z.OutOfRangeMinutes, &z.RestingHeartRate); err != nil {
			return nil, fetchErr("heart zones", err)
		}
		if z.Date, err = parseDate(date); err != nil {
			return nil, fetchErr("heart zones", err)
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("heart zones", err)
	}
	return out, nil
}

// UpsertDailyRecovery merges biomarkers into a day's row. Values the new row
// leaves nil keep what was stored, since each biomarker syncs from its own
// endpoint.
func (db *DB) UpsertDailyRecovery(ctx context.Context, r DailyRecovery) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_recovery (user_id, date, cardio_fitness_score, vo2_max, hrv_rmssd,
			hrv_deep_rmssd, breathing_rate, spo2_avg, spo2_min, spo2_max, skin_temp_c, core_temp_c, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, date) DO UPDATE SET
			cardio_fitness_score = COALESCE(excluded.cardio_fitness_score, cardio_fitness_score),
			vo2_max = COALESCE(excluded.vo2_max, vo2_max),
			hrv_rmssd = COALESCE(excluded.hrv_rmssd, hrv_rmssd),
			hrv_deep_rmssd = COALESCE(excluded.hrv_deep_rmssd, hrv_deep_rmssd),
			breathing_rate = COALESCE(excluded.breathing_rate, breathing_rate),
			spo2_avg = COALESCE(excluded.spo2_avg, spo2_avg),
			spo2_min = COALESCE(excluded.spo2_min, spo2_min),
			spo2_max = COALESCE(excluded.spo2_max, spo2_max),
			skin_temp_c = COALESCE(excluded.skin_temp_c, skin_temp_c),
			core_temp_c = COALESCE(excluded.core_temp_c, core_temp_c),
			updated_at = CURRENT_TIMESTAMP
	`, r.UserID, formatDate(r.Date), r.CardioFitnessScore, r.Vo2Max, r.HrvRmssd,
		r.HrvDeepRmssd, r.BreathingRate, r.Spo2Avg, r.Spo2Min, r.Spo2Max, r.SkinTempC, r.CoreTempC)
	return err
}

// GetDailyRecovery returns biomarker rows for from..to inclusive, oldest first
func (db *DB) GetDailyRecovery(ctx context.Context, userID string, r DateRange) ([]DailyRecovery, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, date, cardio_fitness_score, vo2_max, hrv_rmssd, hrv_deep_rmssd,
			breathing_rate, spo2_avg, spo2_min, spo2_max, skin_temp_c, core_temp_c
		FROM daily_recovery
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, userID, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, fetchErr("recovery", err)
	}
	defer rows.Close()

	var out []DailyRecovery
	for rows.Next() {
		var rec DailyRecovery
		var date string
		if err := rows.Scan(&rec.UserID, &date, &rec.CardioFitnessScore, &rec.Vo2Max, &rec.HrvRmssd,
			&rec.HrvDeepRmssd, &rec.BreathingRate, &rec.Spo2Avg, &rec.Spo2Min, &rec.Spo2Max,
			&rec.SkinTempC, &rec.CoreTempC); err != nil {
			return nil, fetchErr("recovery", err)
		}
		if rec.Date, err = parseDate(date); err != nil {
			return nil, fetchErr("recovery", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("recovery", err)
	}
	return out, nil
}

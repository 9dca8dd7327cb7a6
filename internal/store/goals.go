package store

import (
	"context"
	"fmt"
)

// DefaultWeeklyGoals returns the goals a new user starts with
func DefaultWeeklyGoals(userID string) WeeklyGoals {
	return WeeklyGoals{
		UserID:              userID,
		Zone2TargetMinutes:  180,
		AvgSleepTargetHours: 7,
		AvgStepsTarget:      8500,
		SleepScoreMode:      "fitbit",
	}
}

// GetOrCreateWeeklyGoals returns the user's goals, inserting the defaults on first use
func (db *DB) GetOrCreateWeeklyGoals(ctx context.Context, userID string) (*WeeklyGoals, error) {
	def := DefaultWeeklyGoals(userID)
	if _, err := db.ExecContext(ctx, `
		INSERT INTO weekly_goals (user_id, zone2_target_minutes, avg_sleep_target_hours, avg_steps_target, sleep_score_mode)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, def.Zone2TargetMinutes, def.AvgSleepTargetHours, def.AvgStepsTarget, def.SleepScoreMode); err != nil {
		return nil, fetchErr("creating weekly goals", err)
	}

	var g WeeklyGoals
	err := db.QueryRowContext(ctx, `
		SELECT user_id, zone2_target_minutes, avg_sleep_target_hours, avg_steps_target, sleep_score_mode
		FROM weekly_goals
		WHERE user_id = ?
	`, userID).Scan(&g.UserID, &g.Zone2TargetMinutes, &g.AvgSleepTargetHours, &g.AvgStepsTarget, &g.SleepScoreMode)
	if err != nil {
		return nil, fetchErr("weekly goals", err)
	}
	return &g, nil
}

// UpdateWeeklyGoals stores the user's goals
func (db *DB) UpdateWeeklyGoals(ctx context.Context, g WeeklyGoals) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO weekly_goals (user_id, zone2_target_minutes, avg_sleep_target_hours, avg_steps_target,
			sleep_score_mode, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			zone2_target_minutes = excluded.zone2_target_minutes,
			avg_sleep_target_hours = excluded.avg_sleep_target_hours,
			avg_steps_target = excluded.avg_steps_target,
			sleep_score_mode = excluded.sleep_score_mode,
			updated_at = CURRENT_TIMESTAMP
	`, g.UserID, g.Zone2TargetMinutes, g.AvgSleepTargetHours, g.AvgStepsTarget, g.SleepScoreMode)
	if err != nil {
		return fmt.Errorf("updating weekly goals: %w", err)
	}
	return nil
}

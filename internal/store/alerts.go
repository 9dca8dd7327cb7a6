package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert list bounds
const (
	DefaultAlertLimit = 20
	MaxAlertLimit     = 100
)

// DefaultAlertPreference returns the thresholds a new user starts with
func DefaultAlertPreference(userID string) AlertPreference {
	return AlertPreference{
		UserID:            userID,
		MinSleepHours:     6.5,
		MinAvgSteps:       7000,
		MinZone2Days:      3,
		MaxRestingHRDelta: 4,
		AlertsEnabled:     true,
	}
}

// GetOrCreateAlertPreference returns the user's thresholds, inserting the
// defaults on first use.
func (db *DB) GetOrCreateAlertPreference(ctx context.Context, userID string) (*AlertPreference, error) {
	def := DefaultAlertPreference(userID)
	if _, err := db.ExecContext(ctx, `
		INSERT INTO alert_preferences (user_id, min_sleep_hours, min_avg_steps, min_zone2_days,
			max_resting_hr_delta, alerts_enabled)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, def.MinSleepHours, def.MinAvgSteps, def.MinZone2Days, def.MaxRestingHRDelta,
		boolToInt(def.AlertsEnabled)); err != nil {
		return nil, fetchErr("creating alert preferences", err)
	}

	var p AlertPreference
	var enabled int
	err := db.QueryRowContext(ctx, `
		SELECT user_id, min_sleep_hours, min_avg_steps, min_zone2_days, max_resting_hr_delta, alerts_enabled
		FROM alert_preferences
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.MinSleepHours, &p.MinAvgSteps, &p.MinZone2Days, &p.MaxRestingHRDelta, &enabled)
	if err != nil {
		return nil, fetchErr("alert preferences", err)
	}
	p.AlertsEnabled = enabled == 1
	return &p, nil
}

// UpdateAlertPreference stores the user's thresholds
func (db *DB) UpdateAlertPreference(ctx context.Context, p AlertPreference) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO alert_preferences (user_id, min_sleep_hours, min_avg_steps, min_zone2_days,
			max_resting_hr_delta, alerts_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			min_sleep_hours = excluded.min_sleep_hours,
			min_avg_steps = excluded.min_avg_steps,
			min_zone2_days = excluded.min_zone2_days,
			max_resting_hr_delta = excluded.max_resting_hr_delta,
			alerts_enabled = excluded.alerts_enabled,
			updated_at = CURRENT_TIMESTAMP
	`, p.UserID, p.MinSleepHours, p.MinAvgSteps, p.MinZone2Days, p.MaxRestingHRDelta, boolToInt(p.AlertsEnabled))
	if err != nil {
		return fmt.Errorf("updating alert preferences: %w", err)
	}
	return nil
}

// UpsertAlertEvent creates the alert for (user, day, type) or refreshes its
// severity and message, clearing any resolution. CreatedAt is kept from the
// first insert.
func (db *DB) UpsertAlertEvent(ctx context.Context, e AlertEvent) (*AlertEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	row := db.QueryRowContext(ctx, `
		INSERT INTO alert_events (id, user_id, day_key, type, severity, message, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(user_id, day_key, type) DO UPDATE SET
			severity = excluded.severity,
			message = excluded.message,
			resolved_at = NULL
		RETURNING id, user_id, day_key, type, severity, message, created_at, resolved_at
	`, e.ID, e.UserID, e.DayKey, e.Type, e.Severity, e.Message, formatTime(e.CreatedAt))

	saved, err := scanAlertEvent(row)
	if err != nil {
		return nil, fmt.Errorf("upserting alert %s/%s: %w", e.DayKey, e.Type, err)
	}
	return saved, nil
}

// ListAlerts returns the user's most recent alerts, newest first. limit is
// clamped to 1..100.
func (db *DB) ListAlerts(ctx context.Context, userID string, limit int) ([]AlertEvent, error) {
	limit = max(1, min(limit, MaxAlertLimit))

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, day_key, type, severity, message, created_at, resolved_at
		FROM alert_events
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fetchErr("alerts", err)
	}
	defer rows.Close()

	var out []AlertEvent
	for rows.Next() {
		e, err := scanAlertEvent(rows)
		if err != nil {
			return nil, fetchErr("alerts", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("alerts", err)
	}
	return out, nil
}

// ResolveAlert marks an alert resolved
func (db *DB) ResolveAlert(ctx context.Context, userID, id string, at time.Time) error {
	result, err := db.ExecContext(ctx, `
		UPDATE alert_events SET resolved_at = ? WHERE user_id = ? AND id = ?
	`, formatTime(at), userID, id)
	if err != nil {
		return fmt.Errorf("resolving alert %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving alert %s: %w", id, err)
	}
	if rows == 0 {
		return ErrAlertNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlertEvent(row rowScanner) (*AlertEvent, error) {
	var e AlertEvent
	var createdAt string
	var resolvedAt sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.DayKey, &e.Type, &e.Severity, &e.Message, &createdAt, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.ResolvedAt, err = parseNullTime(resolvedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ReplaceActivityLogs swaps every log in the range for logs, so activities
// deleted upstream disappear on the next sync.
func (db *DB) ReplaceActivityLogs(ctx context.Context, userID string, r DateRange, logs []ActivityLog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM activity_logs WHERE user_id = ? AND date BETWEEN ? AND ?
	`, userID, formatDate(r.From), formatDate(r.To)); err != nil {
		return fmt.Errorf("clearing activity logs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activity_logs (id, user_id, date, start_time, duration_minutes, name, calories, distance, steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_time = excluded.start_time,
			duration_minutes = excluded.duration_minutes,
			name = excluded.name,
			calories = excluded.calories,
			distance = excluded.distance,
			steps = excluded.steps
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		id := l.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, id, userID, formatDate(l.Date), formatTime(l.StartTime),
			l.DurationMinutes, l.Name, l.Calories, l.Distance, l.Steps); err != nil {
			return fmt.Errorf("inserting activity log %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// GetActivityLogs returns logs whose date falls in the range, ordered by start time
func (db *DB) GetActivityLogs(ctx context.Context, userID string, r DateRange) ([]ActivityLog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, date, start_time, duration_minutes, name, calories, distance, steps
		FROM activity_logs
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY start_time ASC
	`, userID, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, fetchErr("activity logs", err)
	}
	defer rows.Close()

	var out []ActivityLog
	for rows.Next() {
		var l ActivityLog
		var date, start string
		if err := rows.Scan(&l.ID, &l.UserID, &date, &start, &l.DurationMinutes, &l.Name,
			&l.Calories, &l.Distance, &l.Steps); err != nil {
			return nil, fetchErr("activity logs", err)
		}
		if l.Date, err = parseDate(date); err != nil {
			return nil, fetchErr("activity logs", err)
		}
		if l.StartTime, err = parseTime(start); err != nil {
			return nil, fetchErr("activity logs", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("activity logs", err)
	}
	return out, nil
}

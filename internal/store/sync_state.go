package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sync state keys
const (
	SyncStateLastSuccess = "last_success_sync"
	SyncStateLastDay     = "last_synced_day"
)

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// CreateSyncRun records the start of a sync run
func (db *DB) CreateSyncRun(ctx context.Context, run *SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = SyncRunning
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, user_id, trigger_kind, status, from_date, to_date, synced_days,
			attempts, warnings, last_error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.UserID, run.Trigger, run.Status, run.FromDate, run.ToDate, run.SyncedDays,
		run.Attempts, run.Warnings, run.LastError, formatTime(run.StartedAt), formatNullTime(run.EndedAt))
	if err != nil {
		return fmt.Errorf("creating sync run: %w", err)
	}
	return nil
}

// UpdateSyncRun saves the run's progress and outcome
func (db *DB) UpdateSyncRun(ctx context.Context, run *SyncRun) error {
	result, err := db.ExecContext(ctx, `
		UPDATE sync_runs
		SET status = ?, synced_days = ?, attempts = ?, warnings = ?, last_error = ?, ended_at = ?
		WHERE id = ?
	`, run.Status, run.SyncedDays, run.Attempts, run.Warnings, run.LastError, formatNullTime(run.EndedAt), run.ID)
	if err != nil {
		return fmt.Errorf("updating sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSyncRunNotFound
	}
	return nil
}

// ListSyncRuns returns the user's most recent sync runs, newest first
func (db *DB) ListSyncRuns(ctx context.Context, userID string, limit int) ([]SyncRun, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, trigger_kind, status, from_date, to_date, synced_days, attempts,
			warnings, last_error, started_at, ended_at
		FROM sync_runs
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, max(1, limit))
	if err != nil {
		return nil, fetchErr("sync runs", err)
	}
	defer rows.Close()

	var out []SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fetchErr("sync runs", err)
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("sync runs", err)
	}
	return out, nil
}

// LatestSyncRun returns the user's most recent sync run
func (db *DB) LatestSyncRun(ctx context.Context, userID string) (*SyncRun, error) {
	runs, err := db.ListSyncRuns(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrSyncRunNotFound
	}
	return &runs[0], nil
}

func scanSyncRun(row rowScanner) (*SyncRun, error) {
	var run SyncRun
	var startedAt string
	var endedAt sql.NullString
	err := row.Scan(&run.ID, &run.UserID, &run.Trigger, &run.Status, &run.FromDate, &run.ToDate,
		&run.SyncedDays, &run.Attempts, &run.Warnings, &run.LastError, &startedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSyncRunNotFound
	}
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			fitbit_user_id TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Daily activity summary (/activities/date/{date}.json)
		`CREATE TABLE IF NOT EXISTS daily_activity (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			steps INTEGER NOT NULL DEFAULT 0,
			active_minutes INTEGER NOT NULL DEFAULT 0,
			sedentary_minutes INTEGER NOT NULL DEFAULT 0,
			lightly_active_minutes INTEGER NOT NULL DEFAULT 0,
			fairly_active_minutes INTEGER NOT NULL DEFAULT 0,
			very_active_minutes INTEGER NOT NULL DEFAULT 0,
			calories_out INTEGER,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,

		// Main sleep per night, keyed by wake date
		`CREATE TABLE IF NOT EXISTS daily_sleep (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			minutes_asleep INTEGER NOT NULL DEFAULT 0,
			time_in_bed INTEGER NOT NULL DEFAULT 0,
			efficiency INTEGER NOT NULL DEFAULT 0,
			deep_minutes INTEGER,
			rem_minutes INTEGER,
			light_minutes INTEGER,
			wake_minutes INTEGER,
			sleep_start TEXT,
			sleep_end TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,

		// Heart rate zones and resting HR
		`CREATE TABLE IF NOT EXISTS daily_heart_zones (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			zone2_minutes INTEGER NOT NULL DEFAULT 0,
			cardio_minutes INTEGER NOT NULL DEFAULT 0,
			peak_minutes INTEGER NOT NULL DEFAULT 0,
			out_of_range_minutes INTEGER NOT NULL DEFAULT 0,
			resting_heart_rate INTEGER,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,

		// Premium biomarkers, every value nullable
		`CREATE TABLE IF NOT EXISTS daily_recovery (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			cardio_fitness_score REAL,
			vo2_max REAL,
			hrv_rmssd REAL,
			hrv_deep_rmssd REAL,
			breathing_rate REAL,
			spo2_avg REAL,
			spo2_min REAL,
			spo2_max REAL,
			skin_temp_c REAL,
			core_temp_c REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,

		// Logged workouts and walks
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			calories INTEGER,
			distance REAL,
			steps INTEGER
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_logs_user_date ON activity_logs(user_id, date)`,

		// Alert thresholds (one row per user)
		`CREATE TABLE IF NOT EXISTS alert_preferences (
			user_id TEXT PRIMARY KEY,
			min_sleep_hours REAL NOT NULL,
			min_avg_steps INTEGER NOT NULL,
			min_zone2_days INTEGER NOT NULL,
			max_resting_hr_delta REAL NOT NULL,
			alerts_enabled INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Alert events, at most one per user, day and rule type
		`CREATE TABLE IF NOT EXISTS alert_events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			day_key TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			resolved_at TEXT,
			UNIQUE (user_id, day_key, type)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_alert_events_created ON alert_events(user_id, created_at)`,

		// Weekly coaching goals (one row per user)
		`CREATE TABLE IF NOT EXISTS weekly_goals (
			user_id TEXT PRIMARY KEY,
			zone2_target_minutes INTEGER NOT NULL,
			avg_sleep_target_hours REAL NOT NULL,
			avg_steps_target INTEGER NOT NULL,
			sleep_score_mode TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync runs
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			trigger_kind TEXT NOT NULL,
			status TEXT NOT NULL,
			from_date TEXT NOT NULL,
			to_date TEXT NOT NULL,
			synced_days INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			warnings TEXT NOT NULL DEFAULT '',
			last_error TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(user_id, started_at)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

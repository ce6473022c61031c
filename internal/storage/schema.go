package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			current_level INTEGER NOT NULL DEFAULT 1,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			priority INTEGER,
			status TEXT NOT NULL DEFAULT 'todo',
			xp_value INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			completed_at DATETIME,
			archived_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			achievement_key TEXT NOT NULL,
			unlocked_at DATETIME NOT NULL,
			UNIQUE(user_id, achievement_key)
		);`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			tasks_completed INTEGER NOT NULL DEFAULT 0,
			quick_wins INTEGER NOT NULL DEFAULT 0,
			deep_work INTEGER NOT NULL DEFAULT 0,
			xp_earned INTEGER NOT NULL DEFAULT 0,
			streak_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user_id, date)
		);`,
		// Replay records so "mark done" retries return the original result.
		`CREATE TABLE IF NOT EXISTS completions (
			task_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			xp_awarded INTEGER NOT NULL,
			level_up INTEGER NOT NULL DEFAULT 0,
			new_level INTEGER NOT NULL,
			streak INTEGER NOT NULL,
			achievement_keys TEXT,
			completed_at DATETIME NOT NULL,
			FOREIGN KEY(task_id) REFERENCES tasks(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_completed_at ON tasks(user_id, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_stats_user_date ON daily_stats(user_id, date);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

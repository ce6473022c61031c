package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type StatRepo struct {
	q DBTX
}

func NewStatRepo(q DBTX) *StatRepo {
	return &StatRepo{q: q}
}

func (r *StatRepo) Get(ctx context.Context, userID, date string) (*DailyStat, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, date, tasks_completed, quick_wins, deep_work, xp_earned, streak_count
		FROM daily_stats
		WHERE user_id = ? AND date = ?
	`, userID, date)

	var s DailyStat
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.TasksCompleted, &s.QuickWins,
		&s.DeepWork, &s.XPEarned, &s.StreakCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("daily stat get: %w", err)
	}
	return &s, nil
}

// Increment upserts today's row and bumps its counters. Past dates are never
// touched through this path.
func (r *StatRepo) Increment(ctx context.Context, userID, date string, quickWin bool, xp, streak int) error {
	quick, deep := 0, 1
	if quickWin {
		quick, deep = 1, 0
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO daily_stats (user_id, date, tasks_completed, quick_wins, deep_work, xp_earned, streak_count)
		VALUES (?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			tasks_completed = tasks_completed + 1,
			quick_wins = quick_wins + excluded.quick_wins,
			deep_work = deep_work + excluded.deep_work,
			xp_earned = xp_earned + excluded.xp_earned,
			streak_count = excluded.streak_count
	`, userID, date, quick, deep, xp, streak)
	if err != nil {
		return fmt.Errorf("daily stat increment: %w", err)
	}
	return nil
}

// ListSince returns daily rows on or after the given date, oldest first.
// An empty date returns the full history.
func (r *StatRepo) ListSince(ctx context.Context, userID, date string) ([]DailyStat, error) {
	query := `
		SELECT id, user_id, date, tasks_completed, quick_wins, deep_work, xp_earned, streak_count
		FROM daily_stats
		WHERE user_id = ?`
	args := []any{userID}
	if date != "" {
		query += ` AND date >= ?`
		args = append(args, date)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily stat list: %w", err)
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.TasksCompleted, &s.QuickWins,
			&s.DeepWork, &s.XPEarned, &s.StreakCount); err != nil {
			return nil, fmt.Errorf("daily stat scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily stat rows: %w", err)
	}
	return out, nil
}

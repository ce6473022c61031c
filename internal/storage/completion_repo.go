package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type CompletionRepo struct {
	q DBTX
}

func NewCompletionRepo(q DBTX) *CompletionRepo {
	return &CompletionRepo{q: q}
}

func (r *CompletionRepo) Insert(ctx context.Context, c Completion) error {
	var keysJSON *string
	if len(c.AchievementKeys) > 0 {
		data, err := json.Marshal(c.AchievementKeys)
		if err != nil {
			return fmt.Errorf("marshal achievement keys: %w", err)
		}
		s := string(data)
		keysJSON = &s
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO completions (task_id, user_id, xp_awarded, level_up, new_level, streak, achievement_keys, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.TaskID, c.UserID, c.XPAwarded, boolToInt(c.LevelUp), c.NewLevel, c.Streak, keysJSON, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("completion insert: %w", err)
	}
	return nil
}

func (r *CompletionRepo) Get(ctx context.Context, taskID string) (*Completion, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT task_id, user_id, xp_awarded, level_up, new_level, streak, achievement_keys, completed_at
		FROM completions
		WHERE task_id = ?
	`, taskID)

	var (
		c        Completion
		levelUp  int
		keysJSON sql.NullString
	)
	if err := row.Scan(&c.TaskID, &c.UserID, &c.XPAwarded, &levelUp, &c.NewLevel,
		&c.Streak, &keysJSON, &c.CompletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("completion get: %w", err)
	}
	c.LevelUp = levelUp != 0

	if keysJSON.Valid && keysJSON.String != "" {
		if err := json.Unmarshal([]byte(keysJSON.String), &c.AchievementKeys); err != nil {
			return nil, fmt.Errorf("unmarshal achievement keys: %w", err)
		}
	}
	return &c, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

package storage

import (
	"context"
	"fmt"
	"time"
)

type AchievementRepo struct {
	q DBTX
}

func NewAchievementRepo(q DBTX) *AchievementRepo {
	return &AchievementRepo{q: q}
}

// Insert records an unlock. The (user_id, achievement_key) unique index makes
// this a no-op for an already-unlocked type.
func (r *AchievementRepo) Insert(ctx context.Context, userID, key string, unlockedAt time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO achievements (user_id, achievement_key, unlocked_at)
		VALUES (?, ?, ?)
	`, userID, key, unlockedAt)
	if err != nil {
		return fmt.Errorf("achievement insert: %w", err)
	}
	return nil
}

func (r *AchievementRepo) ListByUser(ctx context.Context, userID string) ([]Achievement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, achievement_key, unlocked_at
		FROM achievements
		WHERE user_id = ?
		ORDER BY unlocked_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Key, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

// Keys returns the unlocked achievement keys as a set.
func (r *AchievementRepo) Keys(ctx context.Context, userID string) (map[string]bool, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(list))
	for _, a := range list {
		keys[a.Key] = true
	}
	return keys, nil
}

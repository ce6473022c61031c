package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type ProfileRepo struct {
	q DBTX
}

func NewProfileRepo(q DBTX) *ProfileRepo {
	return &ProfileRepo{q: q}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT user_id, total_xp, current_level, current_streak, longest_streak,
			last_activity_date, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID)

	var p Profile
	var lastActivity sql.NullString
	if err := row.Scan(&p.UserID, &p.TotalXP, &p.CurrentLevel, &p.CurrentStreak,
		&p.LongestStreak, &lastActivity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	if lastActivity.Valid {
		v := lastActivity.String
		p.LastActivityDate = &v
	}
	return &p, nil
}

// GetOrCreate returns the profile for userID, creating it on first activity.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID string) (*Profile, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.q.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES (?)`, userID); err != nil {
		return nil, fmt.Errorf("profile insert: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *ProfileRepo) Update(ctx context.Context, p *Profile) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE profiles
		SET total_xp = ?, current_level = ?, current_streak = ?, longest_streak = ?,
			last_activity_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, p.TotalXP, p.CurrentLevel, p.CurrentStreak, p.LongestStreak, p.LastActivityDate, p.UserID)
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	return nil
}

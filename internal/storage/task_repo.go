package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TaskRepo struct {
	q DBTX
}

func NewTaskRepo(q DBTX) *TaskRepo {
	return &TaskRepo{q: q}
}

type TaskInsert struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Category    string
	Priority    *int
	Status      string
	XPValue     int
}

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, category, priority, status, xp_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ID, in.UserID, in.Title, in.Description, in.Category, in.Priority, in.Status, in.XPValue)
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

const taskColumns = `id, user_id, title, description, category, priority, status, xp_value,
	created_at, started_at, completed_at, archived_at`

func (r *TaskRepo) Get(ctx context.Context, userID, id string) (*Task, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanTask(row)
}

// List returns non-archived tasks, newest first. An empty status returns
// everything except archived tasks.
func (r *TaskRepo) List(ctx context.Context, userID, status string) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND status != 'archived'`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListCompleted returns a page of completed tasks, most recently completed
// first, with an optional title/description substring filter.
func (r *TaskRepo) ListCompleted(ctx context.Context, userID, search string, limit, offset int) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND status = 'done'`
	args := []any{userID}
	if search != "" {
		query += ` AND (title LIKE ? OR description LIKE ?)`
		pat := "%" + search + "%"
		args = append(args, pat, pat)
	}
	query += ` ORDER BY completed_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task completed list: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *TaskRepo) CountCompleted(ctx context.Context, userID, search string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = 'done'`
	args := []any{userID}
	if search != "" {
		query += ` AND (title LIKE ? OR description LIKE ?)`
		pat := "%" + search + "%"
		args = append(args, pat, pat)
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("task completed count: %w", err)
	}
	return n, nil
}

// CountCreatedSince counts non-archived tasks created on or after the given
// date. An empty date counts the full history.
func (r *TaskRepo) CountCreatedSince(ctx context.Context, userID, date string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status != 'archived'`
	args := []any{userID}
	if date != "" {
		query += ` AND date(created_at) >= ?`
		args = append(args, date)
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("task created count: %w", err)
	}
	return n, nil
}

// CompletedCounts returns total, quick-win and deep-work completion counts in
// one query, for the achievement counters snapshot.
func (r *TaskRepo) CompletedCounts(ctx context.Context, userID string) (total, quickWins, deepWork int, err error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN category = 'quick_win' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN category = 'deep_work' THEN 1 ELSE 0 END), 0)
		FROM tasks
		WHERE user_id = ? AND status = 'done'
	`, userID)
	if err = row.Scan(&total, &quickWins, &deepWork); err != nil {
		return 0, 0, 0, fmt.Errorf("task completed counts: %w", err)
	}
	return total, quickWins, deepWork, nil
}

func (r *TaskRepo) MarkDone(ctx context.Context, id string, completedAt time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE tasks SET status = 'done', completed_at = ? WHERE id = ?`, completedAt, id)
	if err != nil {
		return fmt.Errorf("task mark done: %w", err)
	}
	return nil
}

func (r *TaskRepo) MarkStarted(ctx context.Context, id string, startedAt time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE tasks SET status = 'in_progress', started_at = ? WHERE id = ?`, startedAt, id)
	if err != nil {
		return fmt.Errorf("task mark started: %w", err)
	}
	return nil
}

func (r *TaskRepo) MarkArchived(ctx context.Context, id string, archivedAt time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE tasks SET status = 'archived', archived_at = ? WHERE id = ?`, archivedAt, id)
	if err != nil {
		return fmt.Errorf("task mark archived: %w", err)
	}
	return nil
}

// MarkRestored un-archives a task. A task completed before archival keeps its
// done status so its completion record stays authoritative.
func (r *TaskRepo) MarkRestored(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE tasks
		SET status = CASE WHEN completed_at IS NOT NULL THEN 'done' ELSE 'todo' END,
			archived_at = NULL
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("task mark restored: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var (
		t           Task
		description sql.NullString
		priority    sql.NullInt64
		startedAt   sql.NullTime
		completedAt sql.NullTime
		archivedAt  sql.NullTime
	)

	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &description, &t.Category, &priority, &t.Status,
		&t.XPValue, &t.CreatedAt, &startedAt, &completedAt, &archivedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	if description.Valid {
		v := description.String
		t.Description = &v
	}
	if priority.Valid {
		v := int(priority.Int64)
		t.Priority = &v
	}
	if startedAt.Valid {
		v := startedAt.Time
		t.StartedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	if archivedAt.Valid {
		v := archivedAt.Time
		t.ArchivedAt = &v
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]Task, error) {
	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return out, nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"momentum/internal/storage"
)

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Category    Category
	Priority    *int
}

// CreateTask validates input, computes the task's XP value via the award
// policy, and inserts it. The XP value is frozen here and never recomputed.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if !validPriority(in.Priority) {
		return nil, fmt.Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	}

	xp, err := AwardXP(in.Category, in.Priority)
	if err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	var desc *string
	if in.Description != "" {
		desc = &in.Description
	}

	id := uuid.NewString()
	if err := s.tasks.Insert(ctx, storage.TaskInsert{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: desc,
		Category:    string(in.Category),
		Priority:    in.Priority,
		Status:      string(StatusTodo),
		XPValue:     xp,
	}); err != nil {
		return nil, err
	}

	return s.tasks.Get(ctx, userID, id)
}

// StartTask moves a todo task to in_progress and records the start time.
func (s *Service) StartTask(ctx context.Context, userID, taskID string) (*storage.Task, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	t, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFoundError{TaskID: taskID}
	}
	switch Status(t.Status) {
	case StatusArchived:
		return nil, AlreadyArchivedError{TaskID: taskID}
	case StatusDone:
		return nil, fmt.Errorf("task %s is already done", taskID)
	case StatusInProgress:
		return t, nil
	}

	if err := s.tasks.MarkStarted(ctx, taskID, s.now()); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, userID, taskID)
}

// ArchiveTask soft-deletes a task. Archived tasks bypass the progression
// engine entirely.
func (s *Service) ArchiveTask(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		userID = DefaultUserID
	}
	t, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return NotFoundError{TaskID: taskID}
	}
	if Status(t.Status) == StatusArchived {
		return nil
	}
	return s.tasks.MarkArchived(ctx, taskID, s.now())
}

// RestoreTask returns an archived task to the board. A task that was completed
// before being archived comes back as done, keeping its completion record
// intact; anything else returns to todo.
func (s *Service) RestoreTask(ctx context.Context, userID, taskID string) (*storage.Task, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	t, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFoundError{TaskID: taskID}
	}
	if Status(t.Status) != StatusArchived {
		return nil, fmt.Errorf("task %s is not archived", taskID)
	}
	if err := s.tasks.MarkRestored(ctx, taskID); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, userID, taskID)
}

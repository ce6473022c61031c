package engine

import (
	"errors"
	"fmt"
)

// NotFoundError indicates the requested task (or profile) does not exist for
// the user. Terminal: the client must pick a valid task.
type NotFoundError struct {
	TaskID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// AlreadyArchivedError indicates an attempt to complete an archived task.
type AlreadyArchivedError struct {
	TaskID string
}

func (e AlreadyArchivedError) Error() string {
	return fmt.Sprintf("task %s is archived", e.TaskID)
}

// InvalidCategoryError indicates a task with an unknown category reached the
// XP policy. This points at a data-integrity bug upstream; the engine surfaces
// it rather than guessing an award.
type InvalidCategoryError struct {
	Category string
}

func (e InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid task category: %q", e.Category)
}

// PersistenceError wraps a failed transactional commit. The whole completion
// was rolled back, so the caller may safely retry.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func IsAlreadyArchived(err error) bool {
	var aa AlreadyArchivedError
	return errors.As(err, &aa)
}

func IsInvalidCategory(err error) bool {
	var ic InvalidCategoryError
	return errors.As(err, &ic)
}

func IsPersistence(err error) bool {
	var pe PersistenceError
	return errors.As(err, &pe)
}

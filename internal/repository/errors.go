package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when no task matches the given
	// (id, owner) pair. A task owned by someone else is reported the
	// same way as a task that does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// TaskFilter narrows the tasks returned by TaskStore.ListVisible.
// Zero values mean "no constraint".
type TaskFilter struct {
	Status     domain.TaskStatus
	TeamID     *uuid.UUID
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// TaskStore defines the interface for task data persistence.
//
// A task is visible to a user who created it, is assigned to it, or belongs
// to the task's team. Visibility is evaluated by the store so listing does
// not need a round trip per task.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrReferenceMissing if the assignee or team does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListVisible returns tasks visible to userID, newest first.
	ListVisible(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update overwrites the mutable fields of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}

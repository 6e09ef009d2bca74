package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// CreateTaskInput holds the fields accepted when creating a task.
// Zero values take the task defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
	TeamID      *uuid.UUID
	Tags        []string
	Metadata    json.RawMessage
}

// TaskService applies visibility and ownership rules on top of the task store.
//
// A task is visible to its creator, its assignee, and members of its team.
// Tasks the caller cannot see are reported as store.ErrTaskNotFound.
type TaskService interface {
	List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	// Delete removes a task. Only the creator may delete (ErrNotOwned).
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	teams  store.TeamStore
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, teams store.TeamStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", nil)
	}
	if teams == nil {
		return nil, domain.NewValidationError("teams", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		teams:  teams,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListVisible(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, in.Title, in.Description)
	if err != nil {
		return nil, err
	}

	patch := domain.TaskPatch{
		DueDate:    in.DueDate,
		AssignedTo: in.AssignedTo,
		TeamID:     in.TeamID,
		Metadata:   in.Metadata,
	}
	if in.Status != "" {
		patch.Status = &in.Status
	}
	if in.Priority != "" {
		patch.Priority = &in.Priority
	}
	if in.Tags != nil {
		patch.Tags, patch.SetTags = in.Tags, true
	}
	if err := task.Apply(patch); err != nil {
		return nil, err
	}

	if task.TeamID != nil {
		if err := s.requireMember(ctx, *task.TeamID, userID); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	visible, err := s.canSee(ctx, task, userID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if !patch.ClearTeam && patch.TeamID != nil &&
		(task.TeamID == nil || *task.TeamID != *patch.TeamID) {
		if err := s.requireMember(ctx, *patch.TeamID, userID); err != nil {
			return nil, err
		}
	}

	if err := task.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != userID {
		return ErrNotOwned
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

func (s *taskServiceImpl) canSee(ctx context.Context, task *domain.Task, userID uuid.UUID) (bool, error) {
	if task.CreatedBy == userID || (task.AssignedTo != nil && *task.AssignedTo == userID) {
		return true, nil
	}
	if task.TeamID == nil {
		return false, nil
	}
	ok, err := s.teams.IsMember(ctx, *task.TeamID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return ok, nil
}

func (s *taskServiceImpl) requireMember(ctx context.Context, teamID, userID uuid.UUID) error {
	ok, err := s.teams.IsMember(ctx, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to check team membership: %w", err)
	}
	if !ok {
		return ErrNotTeamMember
	}
	return nil
}

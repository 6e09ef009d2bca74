package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

// Task statuses.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority ranks tasks.
type TaskPriority string

// Task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Field limits for tasks.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
	MaxTaskTags              = 20
	MaxTaskTagLength         = 50
)

// Task is a unit of work, optionally assigned to a user and shared with a team.
// Metadata is a free-form JSON object stored as a document alongside the
// structured columns.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      TaskStatus      `json:"status"`
	Priority    TaskPriority    `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	AssignedTo  *uuid.UUID      `json:"assigned_to,omitempty"`
	TeamID      *uuid.UUID      `json:"team_id,omitempty"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewTask creates a task owned by createdBy with default status and priority.
func NewTask(createdBy uuid.UUID, title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    TaskPriorityMedium,
		CreatedBy:   createdBy,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.CreatedBy == uuid.Nil {
		return NewValidationError("created_by", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", nil)
	}
	if len(t.Title) > MaxTaskTitleLength {
		return NewValidationError("title", "is too long", nil)
	}
	if len(t.Description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "is too long", nil)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "is not a valid status", nil)
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "is not a valid priority", nil)
	}
	if t.AssignedTo != nil && *t.AssignedTo == uuid.Nil {
		return NewValidationError("assigned_to", "has invalid format", ErrInvalidID)
	}
	if t.TeamID != nil && *t.TeamID == uuid.Nil {
		return NewValidationError("team_id", "has invalid format", ErrInvalidID)
	}
	if len(t.Tags) > MaxTaskTags {
		return NewValidationError("tags", "has too many entries", nil)
	}
	for _, tag := range t.Tags {
		if tag == "" || len(tag) > MaxTaskTagLength {
			return NewValidationError("tags", "contains an invalid tag", nil)
		}
	}
	if len(t.Metadata) > 0 {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(t.Metadata, &obj); err != nil {
			return NewValidationError("metadata", "must be a JSON object", nil)
		}
	}
	return nil
}

// TaskPatch carries the fields of a partial update; nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
	ClearDue    bool
	AssignedTo  *uuid.UUID
	Unassign    bool
	TeamID      *uuid.UUID
	ClearTeam   bool
	Tags        []string
	SetTags     bool
	Metadata    json.RawMessage
}

// Apply updates t with the patch and re-validates. On error t is unchanged.
func (t *Task) Apply(p TaskPatch) error {
	next := *t
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.ClearDue {
		next.DueDate = nil
	} else if p.DueDate != nil {
		due := p.DueDate.UTC()
		next.DueDate = &due
	}
	if p.Unassign {
		next.AssignedTo = nil
	} else if p.AssignedTo != nil {
		assignee := *p.AssignedTo
		next.AssignedTo = &assignee
	}
	if p.ClearTeam {
		next.TeamID = nil
	} else if p.TeamID != nil {
		team := *p.TeamID
		next.TeamID = &team
	}
	if p.SetTags {
		next.Tags = append([]string{}, p.Tags...)
	}
	if p.Metadata != nil {
		next.Metadata = p.Metadata
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

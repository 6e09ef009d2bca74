package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is serialized as "token".
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse carries a rotated token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string          `json:"title"       validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Status      string          `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    string          `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time      `json:"due_date"`
	AssignedTo  *uuid.UUID      `json:"assigned_to"`
	TeamID      *uuid.UUID      `json:"team_id"`
	Tags        []string        `json:"tags"        validate:"omitempty,max=20,dive,min=1,max=50"`
	Metadata    json.RawMessage `json:"metadata"`
}

// UpdateTaskRequest defines a partial task update. Absent fields are left
// unchanged. due_date, assigned_to and team_id accept null to clear them.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Status      *string         `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string         `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     json.RawMessage `json:"due_date"`
	AssignedTo  json.RawMessage `json:"assigned_to"`
	TeamID      json.RawMessage `json:"team_id"`
	Tags        *[]string       `json:"tags"`
	Metadata    json.RawMessage `json:"metadata"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	AssignedTo  *uuid.UUID      `json:"assigned_to,omitempty"`
	TeamID      *uuid.UUID      `json:"team_id,omitempty"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		TeamID:      t.TeamID,
		Tags:        tags,
		Metadata:    t.Metadata,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

// CreateTeamRequest defines the payload for creating a team.
type CreateTeamRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateTeamRequest changes a team's name and/or description.
type UpdateTeamRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// AddMemberRequest names the user to add to a team.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Members     []uuid.UUID `json:"members"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func teamToResponse(t *domain.Team) TeamResponse {
	members := t.Members
	if members == nil {
		members = []uuid.UUID{}
	}
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		Members:     members,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func teamsToResponse(teams []*domain.Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamToResponse(t))
	}
	return out
}

package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Team errors
var (
	// ErrOwnerRemoval is returned when removing a team's owner from its members.
	ErrOwnerRemoval = errors.New("team owner cannot be removed")

	// ErrNotMember is returned when a user is not part of a team.
	ErrNotMember = errors.New("user is not a team member")
)

// Field limits for teams.
const (
	MaxTeamNameLength        = 100
	MaxTeamDescriptionLength = 1000
)

// Team groups users who share tasks. The owner is always a member.
type Team struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Members     []uuid.UUID `json:"members"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewTeam creates a team owned by ownerID, with the owner as sole member.
func NewTeam(ownerID uuid.UUID, name, description string) (*Team, error) {
	now := time.Now().UTC()
	team := &Team{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		OwnerID:     ownerID,
		Members:     []uuid.UUID{ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := team.Validate(); err != nil {
		return nil, err
	}
	return team, nil
}

// Validate checks if the Team has valid data.
func (t *Team) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}
	if t.Name == "" {
		return NewValidationError("name", "cannot be empty", nil)
	}
	if len(t.Name) > MaxTeamNameLength {
		return NewValidationError("name", "is too long", nil)
	}
	if len(t.Description) > MaxTeamDescriptionLength {
		return NewValidationError("description", "is too long", nil)
	}
	if !t.HasMember(t.OwnerID) {
		return NewValidationError("members", "must include the owner", nil)
	}
	return nil
}

// HasMember reports whether userID belongs to the team.
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember adds userID if absent. Reports whether the set changed.
func (t *Team) AddMember(userID uuid.UUID) bool {
	if userID == uuid.Nil || t.HasMember(userID) {
		return false
	}
	t.Members = append(t.Members, userID)
	t.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveMember removes userID. The owner cannot be removed.
func (t *Team) RemoveMember(userID uuid.UUID) error {
	if userID == t.OwnerID {
		return ErrOwnerRemoval
	}
	for i, m := range t.Members {
		if m == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			t.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotMember
}

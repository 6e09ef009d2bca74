package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// TeamStore defines the interface for team and membership persistence.
// Returned teams always carry their full member list.
type TeamStore interface {
	// Create saves a new team and its initial members.
	// It runs several statements and should be called inside a transaction.
	Create(ctx context.Context, team *domain.Team) error

	// GetByID retrieves a team by ID.
	// Returns ErrTeamNotFound if the team does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)

	// ListForUser returns the teams userID is a member of.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error)

	// Update overwrites name and description.
	// Returns ErrTeamNotFound if the team does not exist.
	Update(ctx context.Context, team *domain.Team) error

	// Delete removes a team and its memberships. Tasks keep existing with
	// their team reference cleared.
	// Returns ErrTeamNotFound if the team does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember adds userID to the team. Adding an existing member is a no-op.
	// Returns ErrReferenceMissing if the user does not exist.
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error

	// RemoveMember removes userID from the team.
	// Returns ErrMemberNotFound if the user was not a member.
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// IsMember reports whether userID belongs to the team.
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)

	// WithTx returns a TeamStore bound to tx.
	WithTx(tx *sql.Tx) TeamStore
}

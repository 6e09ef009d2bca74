package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// TeamService manages teams and their membership.
//
// Teams are visible only to their members; others get store.ErrTeamNotFound.
// Mutations other than creation are reserved for the owner (ErrNotOwned).
type TeamService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error)
	Create(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Team, error)
	Get(ctx context.Context, userID, teamID uuid.UUID) (*domain.Team, error)
	// Update changes name and/or description; nil leaves a field unchanged.
	Update(ctx context.Context, userID, teamID uuid.UUID, name, description *string) (*domain.Team, error)
	Delete(ctx context.Context, userID, teamID uuid.UUID) error
	AddMember(ctx context.Context, userID, teamID, memberID uuid.UUID) (*domain.Team, error)
	// RemoveMember returns domain.ErrOwnerRemoval when memberID is the owner.
	RemoveMember(ctx context.Context, userID, teamID, memberID uuid.UUID) (*domain.Team, error)
}

type teamServiceImpl struct {
	teams  store.TeamStore
	users  store.UserStore
	db     *sql.DB
	logger *slog.Logger
}

// NewTeamService creates a TeamService. db scopes multi-statement writes
// in a transaction; with a nil db they run directly on the stores.
func NewTeamService(
	teams store.TeamStore,
	users store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) (TeamService, error) {
	if teams == nil {
		return nil, domain.NewValidationError("teams", "cannot be nil", nil)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &teamServiceImpl{
		teams:  teams,
		users:  users,
		db:     db,
		logger: logger.With(slog.String("component", "team_service")),
	}, nil
}

func (s *teamServiceImpl) inTx(ctx context.Context, fn func(teams store.TeamStore) error) error {
	if s.db == nil {
		return fn(s.teams)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.teams.WithTx(tx))
	})
}

func (s *teamServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	teams, err := s.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Team, error) {
	team, err := domain.NewTeam(userID, name, description)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(teams store.TeamStore) error {
		return teams.Create(ctx, team)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("team created",
		slog.String("team_id", team.ID.String()),
		slog.String("owner_id", userID.String()))
	return team, nil
}

func (s *teamServiceImpl) Get(ctx context.Context, userID, teamID uuid.UUID) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if !team.HasMember(userID) {
		return nil, store.ErrTeamNotFound
	}
	return team, nil
}

// owned loads a team the caller owns.
func (s *teamServiceImpl) owned(ctx context.Context, userID, teamID uuid.UUID) (*domain.Team, error) {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != userID {
		return nil, ErrNotOwned
	}
	return team, nil
}

func (s *teamServiceImpl) Update(
	ctx context.Context,
	userID, teamID uuid.UUID,
	name, description *string,
) (*domain.Team, error) {
	team, err := s.owned(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	updated := *team
	if name != nil {
		updated.Name = *name
	}
	if description != nil {
		updated.Description = *description
	}
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.teams.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return &updated, nil
}

func (s *teamServiceImpl) Delete(ctx context.Context, userID, teamID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, teamID); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("team deleted",
		slog.String("team_id", teamID.String()))
	return nil
}

func (s *teamServiceImpl) AddMember(
	ctx context.Context,
	userID, teamID, memberID uuid.UUID,
) (*domain.Team, error) {
	team, err := s.owned(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, memberID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if team.AddMember(memberID) {
		if err := s.teams.AddMember(ctx, teamID, memberID); err != nil {
			if errors.Is(err, store.ErrReferenceMissing) {
				return nil, store.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
	}
	return team, nil
}

func (s *teamServiceImpl) RemoveMember(
	ctx context.Context,
	userID, teamID, memberID uuid.UUID,
) (*domain.Team, error) {
	team, err := s.owned(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	if err := team.RemoveMember(memberID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return nil, store.ErrMemberNotFound
		}
		return nil, err
	}

	if err := s.teams.RemoveMember(ctx, teamID, memberID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	return team, nil
}

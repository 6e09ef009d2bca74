package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

const teamColumns = `t.id, t.name, t.description, t.owner_id, t.created_at, t.updated_at`

// PostgresTeamStore implements store.TeamStore over the teams and
// team_members tables.
type PostgresTeamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTeamStore creates a team store over db.
// If logger is nil, slog.Default is used.
func NewPostgresTeamStore(db store.DBTX, logger *slog.Logger) *PostgresTeamStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeamStore{
		db:     db,
		logger: logger.With(slog.String("component", "team_store")),
	}
}

var _ store.TeamStore = (*PostgresTeamStore)(nil)

// Create implements store.TeamStore.Create.
func (s *PostgresTeamStore) Create(ctx context.Context, team *domain.Team) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := team.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, team.ID, team.Name, team.Description, team.OwnerID, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		log.Error("failed to create team",
			slog.String("error", err.Error()),
			slog.String("team_id", team.ID.String()))
		return MapError(err)
	}

	for _, member := range team.Members {
		if err := s.AddMember(ctx, team.ID, member); err != nil {
			return err
		}
	}

	log.Info("team created",
		slog.String("team_id", team.ID.String()),
		slog.String("owner_id", team.OwnerID.String()))
	return nil
}

// GetByID implements store.TeamStore.GetByID.
func (s *PostgresTeamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := s.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.OwnerID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTeamNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get team",
			slog.String("error", err.Error()),
			slog.String("team_id", id.String()))
		return nil, MapError(err)
	}

	if team.Members, err = s.loadMembers(ctx, team.ID); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListForUser implements store.TeamStore.ListForUser.
func (s *PostgresTeamStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at DESC, t.id
	`, userID)
	if err != nil {
		log.Error("failed to list teams",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.OwnerID,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	// Members are loaded after the cursor is released so a transaction-bound
	// store does not issue a query while another is still open.
	_ = rows.Close()

	for _, team := range teams {
		if team.Members, err = s.loadMembers(ctx, team.ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// Update implements store.TeamStore.Update.
func (s *PostgresTeamStore) Update(ctx context.Context, team *domain.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE teams SET name = $1, description = $2, updated_at = $3 WHERE id = $4
	`, team.Name, team.Description, team.UpdatedAt, team.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update team",
			slog.String("error", err.Error()),
			slog.String("team_id", team.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTeamNotFound)
}

// Delete implements store.TeamStore.Delete.
func (s *PostgresTeamStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete team",
			slog.String("error", err.Error()),
			slog.String("team_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTeamNotFound)
}

// AddMember implements store.TeamStore.AddMember.
func (s *PostgresTeamStore) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s", store.ErrReferenceMissing, userID)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add team member",
			slog.String("error", err.Error()),
			slog.String("team_id", teamID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// RemoveMember implements store.TeamStore.RemoveMember.
func (s *PostgresTeamStore) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMemberNotFound)
}

// IsMember implements store.TeamStore.IsMember.
func (s *PostgresTeamStore) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&ok)
	if err != nil {
		return false, MapError(err)
	}
	return ok, nil
}

// WithTx implements store.TeamStore.WithTx.
func (s *PostgresTeamStore) WithTx(tx *sql.Tx) store.TeamStore {
	return &PostgresTeamStore{db: tx, logger: s.logger}
}

func (s *PostgresTeamStore) loadMembers(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM team_members WHERE team_id = $1 ORDER BY joined_at, user_id
	`, teamID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team members: %w", err)
	}
	return members, nil
}

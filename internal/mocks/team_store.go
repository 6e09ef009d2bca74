package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// MockTeamStore implements store.TeamStore for testing.
type MockTeamStore struct {
	CreateFn       func(ctx context.Context, team *domain.Team) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	ListForUserFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error)
	UpdateFn       func(ctx context.Context, team *domain.Team) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	AddMemberFn    func(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMemberFn func(ctx context.Context, teamID, userID uuid.UUID) error
	IsMemberFn     func(ctx context.Context, teamID, userID uuid.UUID) (bool, error)

	mu    sync.Mutex
	teams map[uuid.UUID]*domain.Team
}

// NewMockTeamStore creates an in-memory team store seeded with teams.
func NewMockTeamStore(teams ...*domain.Team) *MockTeamStore {
	m := &MockTeamStore{teams: make(map[uuid.UUID]*domain.Team)}
	for _, t := range teams {
		m.teams[t.ID] = t
	}
	return m
}

var _ store.TeamStore = (*MockTeamStore)(nil)

func cloneTeam(t *domain.Team) *domain.Team {
	copied := *t
	copied.Members = append([]uuid.UUID(nil), t.Members...)
	return &copied
}

// Create implements store.TeamStore.
func (m *MockTeamStore) Create(ctx context.Context, team *domain.Team) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, team)
	}
	if err := team.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = cloneTeam(team)
	return nil
}

// GetByID implements store.TeamStore.
func (m *MockTeamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, store.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

// ListForUser implements store.TeamStore.
func (m *MockTeamStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Team, 0)
	for _, t := range m.teams {
		if t.HasMember(userID) {
			out = append(out, cloneTeam(t))
		}
	}
	return out, nil
}

// Update implements store.TeamStore.
func (m *MockTeamStore) Update(ctx context.Context, team *domain.Team) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, team)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[team.ID]
	if !ok {
		return store.ErrTeamNotFound
	}
	t.Name = team.Name
	t.Description = team.Description
	t.UpdatedAt = team.UpdatedAt
	return nil
}

// Delete implements store.TeamStore.
func (m *MockTeamStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[id]; !ok {
		return store.ErrTeamNotFound
	}
	delete(m.teams, id)
	return nil
}

// AddMember implements store.TeamStore.
func (m *MockTeamStore) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, teamID, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return store.ErrReferenceMissing
	}
	t.AddMember(userID)
	return nil
}

// RemoveMember implements store.TeamStore.
func (m *MockTeamStore) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if m.RemoveMemberFn != nil {
		return m.RemoveMemberFn(ctx, teamID, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return store.ErrMemberNotFound
	}
	for i, member := range t.Members {
		if member == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return nil
		}
	}
	return store.ErrMemberNotFound
}

// IsMember implements store.TeamStore.
func (m *MockTeamStore) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	if m.IsMemberFn != nil {
		return m.IsMemberFn(ctx, teamID, userID)
	}
	return m.HasMember(teamID, userID), nil
}

// HasMember is the error-free form of IsMember, usable as MockTaskStore.IsMember.
func (m *MockTeamStore) HasMember(teamID, userID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	return ok && t.HasMember(userID)
}

// WithTx returns the same mock.
func (m *MockTeamStore) WithTx(tx *sql.Tx) store.TeamStore {
	return m
}

package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeamIncludesOwner(t *testing.T) {
	owner := uuid.New()
	team, err := NewTeam(owner, " Platform ", "infra folks")
	require.NoError(t, err)

	assert.Equal(t, "Platform", team.Name)
	assert.Equal(t, owner, team.OwnerID)
	assert.Equal(t, []uuid.UUID{owner}, team.Members)
	assert.True(t, team.HasMember(owner))
}

func TestNewTeamValidation(t *testing.T) {
	_, err := NewTeam(uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTeam(uuid.New(), strings.Repeat("n", MaxTeamNameLength+1), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTeam(uuid.Nil, "name", "")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestTeamMembership(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()
	team, err := NewTeam(owner, "Team", "")
	require.NoError(t, err)

	assert.True(t, team.AddMember(member))
	assert.False(t, team.AddMember(member), "duplicate add is a no-op")
	assert.False(t, team.AddMember(uuid.Nil))
	assert.Len(t, team.Members, 2)

	assert.ErrorIs(t, team.RemoveMember(owner), ErrOwnerRemoval)
	assert.NoError(t, team.RemoveMember(member))
	assert.False(t, team.HasMember(member))
	assert.ErrorIs(t, team.RemoveMember(member), ErrNotMember)
}

package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamLifecycle(t *testing.T) {
	a := newTestAPI(t)
	owner := a.seedUser(t, "owner@example.com")
	member := a.seedUser(t, "member@example.com")
	outsider := a.seedUser(t, "outsider@example.com")

	team := a.createTeam(t, owner.ID, "Core")
	assert.Equal(t, owner.ID, team.OwnerID)
	assert.Equal(t, []uuid.UUID{owner.ID}, team.Members)
	path := "/api/teams/" + team.ID.String()

	rec := a.do(t, http.MethodPost, path+"/members", owner.ID, map[string]string{"user_id": member.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []uuid.UUID{owner.ID, member.ID}, decodeBody[TeamResponse](t, rec).Members)

	rec = a.do(t, http.MethodGet, "/api/teams", member.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]TeamResponse](t, rec), 1)

	rec = a.do(t, http.MethodGet, path, outsider.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPut, path, member.ID, map[string]string{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPut, path, owner.ID, map[string]string{"description": "platform team"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[TeamResponse](t, rec)
	assert.Equal(t, "Core", updated.Name)
	assert.Equal(t, "platform team", updated.Description)

	rec = a.do(t, http.MethodDelete, path+"/members/"+owner.ID.String(), owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The team owner cannot be removed", errorMessage(t, rec))

	rec = a.do(t, http.MethodDelete, path+"/members/"+member.ID.String(), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{owner.ID}, decodeBody[TeamResponse](t, rec).Members)

	rec = a.do(t, http.MethodDelete, path, member.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, path, owner.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAddMemberValidation(t *testing.T) {
	a := newTestAPI(t)
	owner := a.seedUser(t, "owner@example.com")
	team := a.createTeam(t, owner.ID, "Core")
	path := "/api/teams/" + team.ID.String() + "/members"

	rec := a.do(t, http.MethodPost, path, owner.ID, map[string]string{"user_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", errorMessage(t, rec))

	rec = a.do(t, http.MethodPost, path, owner.ID, map[string]string{"user_id": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user_id: invalid ID format", errorMessage(t, rec))

	rec = a.do(t, http.MethodPost, path, owner.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTeamValidation(t *testing.T) {
	a := newTestAPI(t)
	owner := a.seedUser(t, "owner@example.com")

	rec := a.do(t, http.MethodPost, "/api/teams", owner.ID, map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid name: required field", errorMessage(t, rec))
}

package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/service"
)

// TeamHandler serves /api/teams.
type TeamHandler struct {
	teams service.TeamService
}

// NewTeamHandler creates a TeamHandler.
func NewTeamHandler(teams service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// ListTeams returns the teams the caller belongs to.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	teams, err := h.teams.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list teams")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teamsToResponse(teams))
}

// CreateTeam creates a team owned by the caller.
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team, err := h.teams.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create team")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, teamToResponse(team))
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	userID, teamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	team, err := h.teams.Get(r.Context(), userID, teamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get team")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teamToResponse(team))
}

func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	userID, teamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team, err := h.teams.Update(r.Context(), userID, teamID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update team")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teamToResponse(team))
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userID, teamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.teams.Delete(r.Context(), userID, teamID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete team")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /api/teams/{id}/members.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, teamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		HandleValidationError(w, r, err)
		return
	}

	team, err := h.teams.AddMember(r.Context(), userID, teamID, memberID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add team member")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teamToResponse(team))
}

// RemoveMember handles DELETE /api/teams/{id}/members/{userID}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, teamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	memberID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	team, err := h.teams.RemoveMember(r.Context(), userID, teamID, memberID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove team member")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teamToResponse(team))
}

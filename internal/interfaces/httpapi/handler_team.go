package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.teamService.CreateTeam(ctx, usecase.CreateTeamInput{
		CreatorUserID: principal.UserID,
		Name:          req.Name,
		MemberIDs:     req.MemberIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(ctx, created))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	item, err := h.teamService.GetTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(ctx, item))
}

// ListChallengeableTeams returns the teams the given team could challenge
// right now under the current ladder settings.
func (h *Handler) ListChallengeableTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallengeableTeams")
	defer span.End()

	teamID := r.PathValue("teamID")
	teams, err := h.challengeService.ListChallengeable(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list challengeable failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamChallenges")
	defer span.End()

	teamID := r.PathValue("teamID")
	challenges, err := h.challengeService.ListTeamChallenges(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list team challenges failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]challengeDTO, 0, len(challenges))
	for _, c := range challenges {
		items = append(items, challengeToDTO(ctx, c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamJoinRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamJoinRequests")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := r.PathValue("teamID")
	requests, err := h.teamService.ListJoinRequests(ctx, principal.UserID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list join requests failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]joinRequestDTO, 0, len(requests))
	for _, request := range requests {
		items = append(items, joinRequestToDTO(ctx, request))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RequestToJoinTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestToJoinTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := r.PathValue("teamID")
	request, err := h.teamService.RequestToJoin(ctx, usecase.RequestToJoinInput{
		UserID: principal.UserID,
		TeamID: teamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "request to join failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, joinRequestToDTO(ctx, request))
}

func (h *Handler) RespondToJoinRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RespondToJoinRequest")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req respondRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	requestID := r.PathValue("requestID")
	request, err := h.teamService.RespondToJoinRequest(ctx, usecase.RespondToJoinRequestInput{
		ActorUserID: principal.UserID,
		RequestID:   requestID,
		Accept:      *req.Accept,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "respond to join request failed", "user_id", principal.UserID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, joinRequestToDTO(ctx, request))
}

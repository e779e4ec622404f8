package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createChallengeRequest
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

	created, err := h.challengeService.CreateChallenge(ctx, usecase.CreateChallengeInput{
		ActorUserID:      principal.UserID,
		ChallengerTeamID: req.ChallengerTeamID,
		ChallengedTeamID: req.ChallengedTeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create challenge failed",
			"user_id", principal.UserID,
			"challenger_team_id", req.ChallengerTeamID,
			"challenged_team_id", req.ChallengedTeamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, challengeToDTO(ctx, created))
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChallenge")
	defer span.End()

	challengeID := r.PathValue("challengeID")
	item, err := h.challengeService.GetChallenge(ctx, challengeID)
	if err != nil {
		h.logger.WarnContext(ctx, "get challenge failed", "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(ctx, item))
}

func (h *Handler) RespondToChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RespondToChallenge")
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

	challengeID := r.PathValue("challengeID")
	item, err := h.challengeService.RespondToChallenge(ctx, usecase.RespondToChallengeInput{
		ActorUserID: principal.UserID,
		ChallengeID: challengeID,
		Accept:      *req.Accept,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "respond to challenge failed", "user_id", principal.UserID, "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(ctx, item))
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScore")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req submitScoreRequest
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

	// The submitting side is always derived from the caller; a claimed team
	// id is only cross-checked, never trusted.
	if claimed := strings.TrimSpace(req.SubmittingTeamID); claimed != "" {
		actor, err := h.userService.GetUser(ctx, principal.UserID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		if actor.TeamID != claimed {
			writeError(ctx, w, fmt.Errorf("%w: submitting_team_id %s is not your team", usecase.ErrUnauthorized, claimed))
			return
		}
	}

	challengeID := r.PathValue("challengeID")
	item, err := h.challengeService.SubmitScore(ctx, usecase.SubmitScoreInput{
		ActorUserID:    principal.UserID,
		ChallengeID:    challengeID,
		ChallengerSets: req.ChallengerSets,
		ChallengedSets: req.ChallengedSets,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit score failed", "user_id", principal.UserID, "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(ctx, item))
}

func (h *Handler) ValidateScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateScore")
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

	challengeID := r.PathValue("challengeID")
	result, err := h.challengeService.ValidateScore(ctx, usecase.ValidateScoreInput{
		ActorUserID: principal.UserID,
		ChallengeID: challengeID,
		Accept:      *req.Accept,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "validate score failed", "user_id", principal.UserID, "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, validateScoreResultDTO{
		Challenge: challengeToDTO(ctx, result.Challenge),
		Reshuffle: reshuffleToDTO(ctx, result.Reshuffle),
	})
}

// CheckEligibility reports whether a challenge between the two teams would
// be allowed right now. Rule rejections come back as an ineligible result
// with a reason; lookup failures surface as errors.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckEligibility")
	defer span.End()

	query := eligibilityQuery{
		ChallengerTeamID: strings.TrimSpace(r.URL.Query().Get("challenger_team_id")),
		ChallengedTeamID: strings.TrimSpace(r.URL.Query().Get("challenged_team_id")),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.challengeService.CanChallenge(ctx, query.ChallengerTeamID, query.ChallengedTeamID)
	switch {
	case err == nil:
		writeSuccess(ctx, w, http.StatusOK, eligibilityDTO{Eligible: true})
	case errors.Is(err, challenge.ErrIneligible):
		writeSuccess(ctx, w, http.StatusOK, eligibilityDTO{Eligible: false, Reason: err.Error()})
	default:
		h.logger.WarnContext(ctx, "eligibility check failed",
			"challenger_team_id", query.ChallengerTeamID,
			"challenged_team_id", query.ChallengedTeamID,
			"error", err,
		)
		writeError(ctx, w, err)
	}
}

package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDivisions")
	defer span.End()

	divisions, err := h.divisionService.ListDivisions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list divisions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]divisionDTO, 0, len(divisions))
	for _, d := range divisions {
		items = append(items, divisionToDTO(ctx, d))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetDivisionLadder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDivisionLadder")
	defer span.End()

	divisionID := r.PathValue("divisionID")
	entries, err := h.teamService.ListLadder(ctx, divisionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list ladder failed", "division_id", divisionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]ladderEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ladderEntryToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettings")
	defer span.End()

	settings, err := h.divisionService.GetSettings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(ctx, settings))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSettings")
	defer span.End()

	var req updateSettingsRequest
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

	cutoverAt, err := time.Parse(time.RFC3339, req.ChallengeCutoverAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: challenge_cutover_at must be RFC 3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	settings, err := h.divisionService.UpdateSettings(ctx, usecase.UpdateSettingsInput{
		ChallengeCutoverAt:    cutoverAt,
		MaxPositionDifference: req.MaxPositionDifference,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(ctx, settings))
}

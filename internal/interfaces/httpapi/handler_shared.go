package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

type Handler struct {
	divisionService  *usecase.DivisionService
	userService      *usecase.UserService
	teamService      *usecase.TeamService
	challengeService *usecase.ChallengeService
	feed             *changefeed.Bus
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	divisionService *usecase.DivisionService,
	userService *usecase.UserService,
	teamService *usecase.TeamService,
	challengeService *usecase.ChallengeService,
	feed *changefeed.Bus,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		divisionService:  divisionService,
		userService:      userService,
		teamService:      teamService,
		challengeService: challengeService,
		feed:             feed,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type registerUserRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"omitempty,email,max=254"`
	Gender string `json:"gender" validate:"required,oneof=male female"`
	Rating int    `json:"rating" validate:"gte=0"`
}

type createTeamRequest struct {
	Name      string   `json:"name" validate:"required,max=120"`
	MemberIDs []string `json:"member_ids" validate:"omitempty,max=3,dive,required"`
}

type respondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type createChallengeRequest struct {
	ChallengerTeamID string `json:"challenger_team_id" validate:"required"`
	ChallengedTeamID string `json:"challenged_team_id" validate:"required"`
}

type submitScoreRequest struct {
	SubmittingTeamID string `json:"submitting_team_id" validate:"omitempty"`
	ChallengerSets   []int  `json:"challenger_sets" validate:"required,min=1,max=3,dive,gte=0"`
	ChallengedSets   []int  `json:"challenged_sets" validate:"required,min=1,max=3,dive,gte=0"`
}

type updateSettingsRequest struct {
	ChallengeCutoverAt    string `json:"challenge_cutover_at" validate:"required"`
	MaxPositionDifference int    `json:"max_position_difference" validate:"required,gt=0"`
}

type eligibilityQuery struct {
	ChallengerTeamID string `validate:"required"`
	ChallengedTeamID string `validate:"required"`
}

type divisionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type settingsDTO struct {
	ChallengeCutoverAtUTC string `json:"challengeCutoverAtUtc"`
	MaxPositionDifference int    `json:"maxPositionDifference"`
	UpdatedAtUTC          string `json:"updatedAtUtc"`
}

type userDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Gender       string `json:"gender"`
	Rating       int    `json:"rating"`
	TeamID       string `json:"teamId,omitempty"`
	CreatedAtUTC string `json:"createdAtUtc"`
	UpdatedAtUTC string `json:"updatedAtUtc"`
}

type teamDTO struct {
	ID               string   `json:"id"`
	DivisionID       string   `json:"divisionId"`
	Name             string   `json:"name"`
	Position         int      `json:"position"`
	PreviousPosition *int     `json:"previousPosition,omitempty"`
	MemberIDs        []string `json:"memberIds"`
	CreatedBy        string   `json:"createdBy"`
	CreatedAtUTC     string   `json:"createdAtUtc"`
	UpdatedAtUTC     string   `json:"updatedAtUtc"`
}

type ladderEntryDTO struct {
	Team     teamDTO `json:"team"`
	Movement string  `json:"movement"`
}

type joinRequestDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	TeamID       string `json:"teamId"`
	Status       string `json:"status"`
	CreatedAtUTC string `json:"createdAtUtc"`
	UpdatedAtUTC string `json:"updatedAtUtc"`
}

type challengeDTO struct {
	ID                string `json:"id"`
	DivisionID        string `json:"divisionId"`
	ChallengerTeamID  string `json:"challengerTeamId"`
	ChallengedTeamID  string `json:"challengedTeamId"`
	Status            string `json:"status"`
	ChallengerSets    []int  `json:"challengerSets,omitempty"`
	ChallengedSets    []int  `json:"challengedSets,omitempty"`
	SubmittedByTeamID string `json:"submittedByTeamId,omitempty"`
	ScoreValidated    bool   `json:"scoreValidated"`
	WinnerTeamID      string `json:"winnerTeamId,omitempty"`
	CreatedAtUTC      string `json:"createdAtUtc"`
	UpdatedAtUTC      string `json:"updatedAtUtc"`
}

type eligibilityDTO struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

type positionChangeDTO struct {
	TeamID           string `json:"teamId"`
	Position         int    `json:"position"`
	PreviousPosition int    `json:"previousPosition"`
}

type reshuffleDTO struct {
	DivisionID   string              `json:"divisionId"`
	WinnerTeamID string              `json:"winnerTeamId"`
	LoserTeamID  string              `json:"loserTeamId"`
	Changes      []positionChangeDTO `json:"changes"`
	AppliedAtUTC string              `json:"appliedAtUtc"`
}

type validateScoreResultDTO struct {
	Challenge challengeDTO  `json:"challenge"`
	Reshuffle *reshuffleDTO `json:"reshuffle,omitempty"`
}

func divisionToDTO(ctx context.Context, v division.Division) divisionDTO {
	_ = ctx

	return divisionDTO{
		ID:   v.ID,
		Name: v.Name,
		Code: v.Code,
	}
}

func settingsToDTO(ctx context.Context, v division.Settings) settingsDTO {
	_ = ctx

	return settingsDTO{
		ChallengeCutoverAtUTC: v.ChallengeCutoverAt.UTC().Format(time.RFC3339),
		MaxPositionDifference: v.MaxPositionDifference,
		UpdatedAtUTC:          v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func userToDTO(ctx context.Context, v user.User) userDTO {
	_ = ctx

	return userDTO{
		ID:           v.ID,
		Name:         v.Name,
		Email:        v.Email,
		Gender:       string(v.Gender),
		Rating:       v.Rating,
		TeamID:       v.TeamID,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func teamToDTO(ctx context.Context, v team.Team) teamDTO {
	_ = ctx

	return teamDTO{
		ID:               v.ID,
		DivisionID:       v.DivisionID,
		Name:             v.Name,
		Position:         v.Position,
		PreviousPosition: v.PreviousPosition,
		MemberIDs:        v.MemberIDs,
		CreatedBy:        v.CreatedBy,
		CreatedAtUTC:     v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:     v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ladderEntryToDTO(ctx context.Context, v usecase.LadderEntry) ladderEntryDTO {
	return ladderEntryDTO{
		Team:     teamToDTO(ctx, v.Team),
		Movement: string(v.Movement),
	}
}

func joinRequestToDTO(ctx context.Context, v joinrequest.JoinRequest) joinRequestDTO {
	_ = ctx

	return joinRequestDTO{
		ID:           v.ID,
		UserID:       v.UserID,
		TeamID:       v.TeamID,
		Status:       string(v.Status),
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func challengeToDTO(ctx context.Context, v challenge.Challenge) challengeDTO {
	_ = ctx

	return challengeDTO{
		ID:                v.ID,
		DivisionID:        v.DivisionID,
		ChallengerTeamID:  v.ChallengerTeamID,
		ChallengedTeamID:  v.ChallengedTeamID,
		Status:            string(v.Status),
		ChallengerSets:    v.ChallengerSets,
		ChallengedSets:    v.ChallengedSets,
		SubmittedByTeamID: v.SubmittedByTeamID,
		ScoreValidated:    v.ScoreValidated,
		WinnerTeamID:      v.WinnerTeamID,
		CreatedAtUTC:      v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:      v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// reshuffleToDTO returns nil for a reshuffle that moved nothing, so
// responses omit the block instead of carrying an empty one.
func reshuffleToDTO(ctx context.Context, v usecase.LadderReshuffle) *reshuffleDTO {
	_ = ctx

	if len(v.Updates) == 0 {
		return nil
	}

	changes := make([]positionChangeDTO, 0, len(v.Updates))
	for _, update := range v.Updates {
		changes = append(changes, positionChangeDTO{
			TeamID:           update.TeamID,
			Position:         update.Position,
			PreviousPosition: update.PreviousPosition,
		})
	}

	return &reshuffleDTO{
		DivisionID:   v.DivisionID,
		WinnerTeamID: v.WinnerTeamID,
		LoserTeamID:  v.LoserTeamID,
		Changes:      changes,
		AppliedAtUTC: v.AppliedAt.UTC().Format(time.RFC3339),
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
)

// LadderReshuffle reports one applied ranking change for callers and
// outbound notifications.
type LadderReshuffle struct {
	DivisionID   string                `json:"division_id"`
	WinnerTeamID string                `json:"winner_team_id"`
	LoserTeamID  string                `json:"loser_team_id"`
	Updates      []team.PositionUpdate `json:"updates"`
	AppliedAt    time.Time             `json:"applied_at"`
}

// RankingService owns every ladder position mutation after team creation.
// Reshuffles for the same division are serialized through a per-division
// mutex, so concurrent validations cannot interleave their read-plan-write
// cycles; the store's position-conflict check backstops writers on other
// instances.
type RankingService struct {
	teamRepo team.Repository
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRankingService(teamRepo team.Repository, notifier Notifier, logger *logging.Logger) *RankingService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		teamRepo: teamRepo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ApplyValidatedResult moves the winner of a validated challenge to the
// loser's position and shifts the displaced range down one rank. A winner
// already ranked at or above the loser leaves the ladder untouched and
// returns an empty reshuffle.
func (s *RankingService) ApplyValidatedResult(ctx context.Context, divisionID, winnerTeamID, loserTeamID string) (LadderReshuffle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.ApplyValidatedResult")
	defer span.End()

	divisionID = strings.TrimSpace(divisionID)
	winnerTeamID = strings.TrimSpace(winnerTeamID)
	loserTeamID = strings.TrimSpace(loserTeamID)
	if divisionID == "" {
		return LadderReshuffle{}, fmt.Errorf("%w: division id is required", ErrInvalidInput)
	}
	if winnerTeamID == "" || loserTeamID == "" {
		return LadderReshuffle{}, fmt.Errorf("%w: winner and loser team ids are required", ErrInvalidInput)
	}

	lock := s.divisionLock(divisionID)
	lock.Lock()
	defer lock.Unlock()

	teams, err := s.teamRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return LadderReshuffle{}, fmt.Errorf("list teams for reshuffle: %w", err)
	}

	updates, err := team.PromotionPlan(teams, winnerTeamID, loserTeamID)
	if err != nil {
		if errors.Is(err, team.ErrNotInDivision) {
			return LadderReshuffle{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return LadderReshuffle{}, fmt.Errorf("plan reshuffle: %w", err)
	}

	reshuffle := LadderReshuffle{
		DivisionID:   divisionID,
		WinnerTeamID: winnerTeamID,
		LoserTeamID:  loserTeamID,
		Updates:      updates,
		AppliedAt:    s.now().UTC(),
	}
	if len(updates) == 0 {
		return reshuffle, nil
	}

	if err := s.teamRepo.ApplyPositionUpdates(ctx, divisionID, updates); err != nil {
		if errors.Is(err, team.ErrPositionConflict) {
			return LadderReshuffle{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		return LadderReshuffle{}, fmt.Errorf("apply position updates: %w", err)
	}

	s.logger.InfoContext(ctx, "ladder reshuffled",
		"division_id", divisionID,
		"winner_team_id", winnerTeamID,
		"loser_team_id", loserTeamID,
		"moved_teams", len(updates),
	)

	s.notifier.TableChanged(ctx, changefeed.TableTeams)
	s.notifier.Event(ctx, "ladder.updated", reshuffle)

	return reshuffle, nil
}

// VerifyLadder checks that a division's positions still form a dense 1..N
// permutation. Exposed for internal diagnostics.
func (s *RankingService) VerifyLadder(ctx context.Context, divisionID string) error {
	divisionID = strings.TrimSpace(divisionID)
	if divisionID == "" {
		return fmt.Errorf("%w: division id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return fmt.Errorf("list teams for ladder verify: %w", err)
	}
	if err := team.VerifyDensePositions(teams); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	return nil
}

func (s *RankingService) divisionLock(divisionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[divisionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[divisionID] = lock
	}

	return lock
}

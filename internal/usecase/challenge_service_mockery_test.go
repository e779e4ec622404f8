package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
	challengemock "github.com/Keanutjardim/FRPadelLeague/internal/mocks/domain/challenge"
	teammock "github.com/Keanutjardim/FRPadelLeague/internal/mocks/domain/team"
	"github.com/stretchr/testify/mock"
)

func TestChallengeService_GetChallenge_StoreErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	challengeRepo := challengemock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)

	service := NewChallengeService(challengeRepo, teamRepo, memory.NewSettingsRepository(), nil, nil, &seqIDGenerator{prefix: "chl"})

	storeErr := errors.New("connection reset")
	challengeRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "chl-1").
		Return(challenge.Challenge{}, false, storeErr).
		Once()

	_, err := service.GetChallenge(ctx, "chl-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("store failures must not read as not-found")
	}
}

func TestChallengeService_CreateChallenge_StoreRaceUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	challengeRepo := challengemock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)

	settingsRepo := memory.NewSeededSettingsRepository(division.Settings{
		ChallengeCutoverAt:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		MaxPositionDifference: 3,
	})
	service := NewChallengeService(challengeRepo, teamRepo, settingsRepo, nil, nil, &seqIDGenerator{prefix: "chl"})

	challenger := team.Team{
		ID: "t3", DivisionID: "div-men", Name: "Three", Position: 3,
		MemberIDs: []string{"u3a", "u3b"}, CreatedBy: "u3a",
	}
	challenged := team.Team{
		ID: "t2", DivisionID: "div-men", Name: "Two", Position: 2,
		MemberIDs: []string{"u2a", "u2b"}, CreatedBy: "u2a",
	}

	teamRepo.On("GetByID", mock.Anything, "t3").Return(challenger, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "t2").Return(challenged, true, nil).Once()
	// The pre-check sees no active duel, but a concurrent writer wins the
	// race and the store's unique guard fires on insert.
	challengeRepo.
		On("FindActiveBetween", mock.Anything, "t3", "t2").
		Return(challenge.Challenge{}, false, nil).
		Once()
	challengeRepo.
		On("Create", mock.Anything, mock.Anything).
		Return(challenge.ErrDuplicateActive).
		Once()

	_, err := service.CreateChallenge(ctx, CreateChallengeInput{
		ActorUserID:      "u3a",
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t2",
	})
	if !errors.Is(err, challenge.ErrDuplicateActive) {
		t.Fatalf("expected ErrDuplicateActive surfaced from the store, got %v", err)
	}
}

func TestChallengeService_ValidateScore_RankingFailureLeavesChallengeUnvalidatedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	challengeRepo := challengemock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)

	settingsRepo := memory.NewSeededSettingsRepository(division.Settings{
		ChallengeCutoverAt:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		MaxPositionDifference: 3,
	})

	rankingErr := errors.New("position conflict")
	ranking := failingReshuffler{err: rankingErr}
	service := NewChallengeService(challengeRepo, teamRepo, settingsRepo, ranking, nil, &seqIDGenerator{prefix: "chl"})

	challenger := team.Team{
		ID: "t3", DivisionID: "div-men", Name: "Three", Position: 3,
		MemberIDs: []string{"u3a", "u3b"}, CreatedBy: "u3a",
	}
	stored := challenge.Challenge{
		ID:                "chl-9",
		DivisionID:        "div-men",
		ChallengerTeamID:  "t3",
		ChallengedTeamID:  "t2",
		Status:            challenge.StatusCompleted,
		ChallengerSets:    []int{6, 6},
		ChallengedSets:    []int{3, 4},
		SubmittedByTeamID: "t3",
	}

	challengeRepo.On("GetByID", mock.Anything, "chl-9").Return(stored, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "t3").Return(challenger, true, nil).Once()
	// Actor plays for the challenged side, resolved after the challenger
	// lookup misses.
	teamRepo.On("GetByID", mock.Anything, "t2").Return(team.Team{
		ID: "t2", DivisionID: "div-men", Name: "Two", Position: 2,
		MemberIDs: []string{"u2a", "u2b"}, CreatedBy: "u2a",
	}, true, nil).Once()

	// No challengeRepo.Update expectation: the challenge must stay
	// untouched when the ladder move fails.
	_, err := service.ValidateScore(ctx, ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: "chl-9",
		Accept:      true,
	})
	if !errors.Is(err, rankingErr) {
		t.Fatalf("expected ranking failure surfaced, got %v", err)
	}
}

type failingReshuffler struct {
	err error
}

func (f failingReshuffler) ApplyValidatedResult(context.Context, string, string, string) (LadderReshuffle, error) {
	return LadderReshuffle{}, f.err
}

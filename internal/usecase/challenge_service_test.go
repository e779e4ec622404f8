package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
)

func TestChallengeService_CreateChallenge_StartsAccepted(t *testing.T) {
	f := newLadderFixture(t, 5)

	item := f.mustCreateChallenge(t, "t4", "t2")

	if item.Status != challenge.StatusAccepted {
		t.Fatalf("expected new challenge to start accepted, got %s", item.Status)
	}
	if item.DivisionID != "div-men" {
		t.Fatalf("expected division div-men, got %s", item.DivisionID)
	}
	if item.ChallengerTeamID != "t4" || item.ChallengedTeamID != "t2" {
		t.Fatalf("unexpected pairing: %s vs %s", item.ChallengerTeamID, item.ChallengedTeamID)
	}
	if f.notifier.eventCount("challenge.created") != 1 {
		t.Fatalf("expected one challenge.created event")
	}
}

func TestChallengeService_CreateChallenge_EligibilityRules(t *testing.T) {
	tests := []struct {
		name       string
		challenger string
		challenged string
		targetErr  error
	}{
		{name: "one rank up", challenger: "t3", challenged: "t2"},
		{name: "three ranks up at the limit", challenger: "t5", challenged: "t2"},
		{name: "four ranks up beyond the limit", challenger: "t5", challenged: "t1", targetErr: challenge.ErrIneligible},
		{name: "downward", challenger: "t2", challenged: "t5", targetErr: challenge.ErrIneligible},
		{name: "self", challenger: "t3", challenged: "t3", targetErr: challenge.ErrIneligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLadderFixture(t, 5)

			_, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
				ActorUserID:      fixtureMember(tt.challenger),
				ChallengerTeamID: tt.challenger,
				ChallengedTeamID: tt.challenged,
			})
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestChallengeService_CreateChallenge_PreCutoverSkipsRangeLimit(t *testing.T) {
	f := newLadderFixture(t, 8)
	if err := f.settingsRepo.Upsert(t.Context(), division.Settings{
		ChallengeCutoverAt:    fixtureNow.Add(24 * time.Hour),
		MaxPositionDifference: 3,
		UpdatedAt:             fixtureNow,
	}); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}

	// Seven ranks up, far beyond the post-cutover limit.
	item := f.mustCreateChallenge(t, "t8", "t1")
	if item.Status != challenge.StatusAccepted {
		t.Fatalf("expected accepted challenge, got %s", item.Status)
	}
}

func TestChallengeService_CreateChallenge_MissingSettingsFailClosed(t *testing.T) {
	f := newLadderFixture(t, 5)
	f.challenges.settingsRepo = memory.NewSettingsRepository()

	_, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
		ActorUserID:      "u3a",
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t2",
	})
	if !errors.Is(err, challenge.ErrIneligible) {
		t.Fatalf("expected ErrIneligible with unset settings, got %v", err)
	}
}

func TestChallengeService_CreateChallenge_DuplicateActiveBlocked(t *testing.T) {
	f := newLadderFixture(t, 5)

	f.mustCreateChallenge(t, "t3", "t2")

	_, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
		ActorUserID:      "u3a",
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t2",
	})
	if !errors.Is(err, challenge.ErrDuplicateActive) {
		t.Fatalf("expected ErrDuplicateActive, got %v", err)
	}
}

func TestChallengeService_DuplicateGuardCoversReverseDirection(t *testing.T) {
	f := newLadderFixture(t, 6)

	f.mustCreateChallenge(t, "t4", "t3")

	// The lookup matches the pairing regardless of which side asks.
	if _, busy, err := f.challengeRepo.FindActiveBetween(t.Context(), "t3", "t4"); err != nil {
		t.Fatalf("find active between: %v", err)
	} else if !busy {
		t.Fatalf("expected reverse lookup to find the active challenge")
	}

	// The store backstop also rejects a reversed insert.
	err := f.challengeRepo.Create(t.Context(), challenge.Challenge{
		ID:               "chl-reversed",
		DivisionID:       "div-men",
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t4",
		Status:           challenge.StatusAccepted,
		CreatedAt:        fixtureNow,
		UpdatedAt:        fixtureNow,
	})
	if !errors.Is(err, challenge.ErrDuplicateActive) {
		t.Fatalf("expected ErrDuplicateActive from store, got %v", err)
	}
}

func TestChallengeService_CreateChallenge_ActorMustPlayForChallenger(t *testing.T) {
	f := newLadderFixture(t, 5)

	_, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
		ActorUserID:      "u2a", // plays for the challenged side
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t2",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestChallengeService_RespondToChallenge(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t3", "t2")

	// Only the challenged team may respond.
	_, err := f.challenges.RespondToChallenge(t.Context(), RespondToChallengeInput{
		ActorUserID: "u3a",
		ChallengeID: item.ID,
		Accept:      false,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for challenger responding, got %v", err)
	}

	// Accepting an auto-accepted challenge is a no-op.
	accepted, err := f.challenges.RespondToChallenge(t.Context(), RespondToChallengeInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != challenge.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	declined, err := f.challenges.RespondToChallenge(t.Context(), RespondToChallengeInput{
		ActorUserID: "u2b",
		ChallengeID: item.ID,
		Accept:      false,
	})
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != challenge.StatusDeclined {
		t.Fatalf("expected declined, got %s", declined.Status)
	}

	// Declined is terminal.
	if _, err := f.challenges.RespondToChallenge(t.Context(), RespondToChallengeInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on declined challenge, got %v", err)
	}
	if _, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    "u3a",
		ChallengeID:    item.ID,
		ChallengerSets: []int{6, 6},
		ChallengedSets: []int{2, 3},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput submitting on declined challenge, got %v", err)
	}

	// The pairing is free again once the challenge is declined.
	if _, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
		ActorUserID:      "u3a",
		ChallengerTeamID: "t3",
		ChallengedTeamID: "t2",
	}); err != nil {
		t.Fatalf("expected new challenge after decline, got %v", err)
	}
}

func TestChallengeService_SubmitScore(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t3", "t2")

	// Outsiders cannot submit.
	if _, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    "u5a",
		ChallengeID:    item.ID,
		ChallengerSets: []int{6, 6},
		ChallengedSets: []int{2, 3},
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Invalid scores are rejected before anything is stored.
	if _, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    "u3a",
		ChallengeID:    item.ID,
		ChallengerSets: []int{6, 5},
		ChallengedSets: []int{2, 5},
	}); !errors.Is(err, challenge.ErrSetScoreInvalid) {
		t.Fatalf("expected ErrSetScoreInvalid, got %v", err)
	}
	if _, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    "u3a",
		ChallengeID:    item.ID,
		ChallengerSets: []int{6, 4},
		ChallengedSets: []int{3, 6},
	}); !errors.Is(err, challenge.ErrMatchIncomplete) {
		t.Fatalf("expected ErrMatchIncomplete for a split without decider, got %v", err)
	}

	stored, err := f.challenges.GetChallenge(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if stored.HasScore() || stored.Status != challenge.StatusAccepted {
		t.Fatalf("rejected submissions must not mutate the challenge")
	}

	// The challenged side can be the submitter too.
	submitted := f.mustSubmitScore(t, item.ID, "u2a", []int{6, 7}, []int{3, 5})
	if submitted.Status != challenge.StatusCompleted {
		t.Fatalf("expected completed, got %s", submitted.Status)
	}
	if submitted.SubmittedByTeamID != "t2" {
		t.Fatalf("expected submitted_by t2, got %s", submitted.SubmittedByTeamID)
	}
	if submitted.ScoreValidated {
		t.Fatalf("fresh submission must not be validated")
	}
	if submitted.WinnerTeamID != "" {
		t.Fatalf("winner is only fixed at validation, got %s", submitted.WinnerTeamID)
	}

	// A second submission has to wait for validation or dispute.
	if _, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    "u3a",
		ChallengeID:    item.ID,
		ChallengerSets: []int{6, 6},
		ChallengedSets: []int{0, 0},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on double submit, got %v", err)
	}
}

func TestChallengeService_ValidateScore_ChallengerWinMovesLadder(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t4", "t2")
	f.mustSubmitScore(t, item.ID, "u4a", []int{6, 4, 7}, []int{4, 6, 5})

	// The submitting team cannot validate its own score.
	if _, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u4b",
		ChallengeID: item.ID,
		Accept:      true,
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for submitter validating, got %v", err)
	}

	result, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("validate score: %v", err)
	}
	if !result.Challenge.ScoreValidated {
		t.Fatalf("expected validated challenge")
	}
	if result.Challenge.WinnerTeamID != "t4" {
		t.Fatalf("expected winner t4, got %s", result.Challenge.WinnerTeamID)
	}
	if len(result.Reshuffle.Updates) != 3 {
		t.Fatalf("expected 3 position updates, got %d", len(result.Reshuffle.Updates))
	}

	positions := f.positions(t)
	want := map[string]int{"t1": 1, "t4": 2, "t2": 3, "t3": 4, "t5": 5}
	for teamID, pos := range want {
		if positions[teamID] != pos {
			t.Fatalf("team %s: expected position %d, got %d", teamID, pos, positions[teamID])
		}
	}
	f.assertDense(t)

	// Validated challenges are terminal for scoring.
	if _, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on re-validation, got %v", err)
	}

	// And the pairing opens up again.
	if _, busy, err := f.challengeRepo.FindActiveBetween(t.Context(), "t4", "t2"); err != nil {
		t.Fatalf("find active: %v", err)
	} else if busy {
		t.Fatalf("validated challenge must not count as active")
	}
}

func TestChallengeService_ValidateScore_IncumbentWinKeepsLadder(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t4", "t2")
	// Challenged side wins in straight sets.
	f.mustSubmitScore(t, item.ID, "u4a", []int{3, 4}, []int{6, 6})

	before := f.positions(t)
	result, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("validate score: %v", err)
	}
	if result.Challenge.WinnerTeamID != "t2" {
		t.Fatalf("expected winner t2, got %s", result.Challenge.WinnerTeamID)
	}
	if len(result.Reshuffle.Updates) != 0 {
		t.Fatalf("expected no reshuffle when the incumbent wins")
	}

	after := f.positions(t)
	for teamID, pos := range before {
		if after[teamID] != pos {
			t.Fatalf("team %s moved from %d to %d on an incumbent win", teamID, pos, after[teamID])
		}
	}
}

func TestChallengeService_ValidateScore_DisputeClearsAndReopens(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t3", "t2")
	f.mustSubmitScore(t, item.ID, "u3a", []int{6, 6}, []int{4, 4})

	disputed, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      false,
	})
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if disputed.Challenge.Status != challenge.StatusAccepted {
		t.Fatalf("expected dispute to reopen the challenge, got %s", disputed.Challenge.Status)
	}
	if disputed.Challenge.HasScore() || disputed.Challenge.SubmittedByTeamID != "" {
		t.Fatalf("expected dispute to clear the submitted score")
	}

	// Round two: other side submits this time, gets disputed again.
	f.mustSubmitScore(t, item.ID, "u2a", []int{4, 4}, []int{6, 6})
	if _, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u3a",
		ChallengeID: item.ID,
		Accept:      false,
	}); err != nil {
		t.Fatalf("second dispute: %v", err)
	}

	// Round three sticks.
	f.mustSubmitScore(t, item.ID, "u3a", []int{6, 3, 6}, []int{4, 6, 2})
	result, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("final validation: %v", err)
	}
	if result.Challenge.WinnerTeamID != "t3" {
		t.Fatalf("expected winner t3, got %s", result.Challenge.WinnerTeamID)
	}
	if f.notifier.eventCount("challenge.disputed") != 2 {
		t.Fatalf("expected two dispute events")
	}

	positions := f.positions(t)
	if positions["t3"] != 2 || positions["t2"] != 3 {
		t.Fatalf("expected t3=2 t2=3 after validated win, got t3=%d t2=%d", positions["t3"], positions["t2"])
	}
}

func TestChallengeService_ValidateScore_WithoutSubmission(t *testing.T) {
	f := newLadderFixture(t, 5)
	item := f.mustCreateChallenge(t, "t3", "t2")

	if _, err := f.challenges.ValidateScore(t.Context(), ValidateScoreInput{
		ActorUserID: "u2a",
		ChallengeID: item.ID,
		Accept:      true,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without a submitted score, got %v", err)
	}
}

func TestChallengeService_CanChallenge(t *testing.T) {
	f := newLadderFixture(t, 6)

	if err := f.challenges.CanChallenge(t.Context(), "t5", "t3"); err != nil {
		t.Fatalf("expected eligible pairing, got %v", err)
	}
	if err := f.challenges.CanChallenge(t.Context(), "t6", "t1"); !errors.Is(err, challenge.ErrIneligible) {
		t.Fatalf("expected ErrIneligible beyond range, got %v", err)
	}
	if err := f.challenges.CanChallenge(t.Context(), "t5", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChallengeService_ListChallengeable(t *testing.T) {
	f := newLadderFixture(t, 8)

	// t6 may reach up to three ranks: t3, t4, t5.
	targets, err := f.challenges.ListChallengeable(t.Context(), "t6")
	if err != nil {
		t.Fatalf("list challengeable: %v", err)
	}
	gotIDs := make([]string, 0, len(targets))
	for _, item := range targets {
		gotIDs = append(gotIDs, item.ID)
	}
	if len(gotIDs) != 3 || gotIDs[0] != "t3" || gotIDs[1] != "t4" || gotIDs[2] != "t5" {
		t.Fatalf("expected [t3 t4 t5], got %v", gotIDs)
	}

	// An active duel removes the pair from the list.
	f.mustCreateChallenge(t, "t6", "t4")
	targets, err = f.challenges.ListChallengeable(t.Context(), "t6")
	if err != nil {
		t.Fatalf("list challengeable: %v", err)
	}
	for _, item := range targets {
		if item.ID == "t4" {
			t.Fatalf("expected t4 excluded while duel is active")
		}
	}
}


package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
)

func TestRankingService_ApplyValidatedResult(t *testing.T) {
	f := newLadderFixture(t, 8)

	reshuffle, err := f.ranking.ApplyValidatedResult(t.Context(), memory.DivisionIDMen, "t6", "t2")
	if err != nil {
		t.Fatalf("apply validated result: %v", err)
	}
	if len(reshuffle.Updates) != 5 {
		t.Fatalf("expected 5 updates, got %d", len(reshuffle.Updates))
	}

	positions := f.positions(t)
	want := map[string]int{"t1": 1, "t6": 2, "t2": 3, "t3": 4, "t4": 5, "t5": 6, "t7": 7, "t8": 8}
	for teamID, pos := range want {
		if positions[teamID] != pos {
			t.Fatalf("team %s: expected position %d, got %d", teamID, pos, positions[teamID])
		}
	}
	f.assertDense(t)

	// Every moved team must carry its previous position.
	moved, _, err2 := getTeamState(t, f, "t6")
	if err2 != nil {
		t.Fatalf("get team: %v", err2)
	}
	if moved.PreviousPosition == nil || *moved.PreviousPosition != 6 {
		t.Fatalf("expected t6 previous position 6, got %v", moved.PreviousPosition)
	}
	displaced, _, err2 := getTeamState(t, f, "t2")
	if err2 != nil {
		t.Fatalf("get team: %v", err2)
	}
	if displaced.PreviousPosition == nil || *displaced.PreviousPosition != 2 {
		t.Fatalf("expected t2 previous position 2, got %v", displaced.PreviousPosition)
	}

	// Untouched teams keep a nil previous position.
	untouched, _, err2 := getTeamState(t, f, "t8")
	if err2 != nil {
		t.Fatalf("get team: %v", err2)
	}
	if untouched.PreviousPosition != nil {
		t.Fatalf("expected t8 previous position nil, got %d", *untouched.PreviousPosition)
	}
}

func TestRankingService_NoOpWhenWinnerAlreadyAbove(t *testing.T) {
	f := newLadderFixture(t, 5)

	reshuffle, err := f.ranking.ApplyValidatedResult(t.Context(), memory.DivisionIDMen, "t2", "t4")
	if err != nil {
		t.Fatalf("apply validated result: %v", err)
	}
	if len(reshuffle.Updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(reshuffle.Updates))
	}

	positions := f.positions(t)
	for i := 1; i <= 5; i++ {
		teamID := "t" + string(rune('0'+i))
		if positions[teamID] != i {
			t.Fatalf("team %s moved to %d on a no-op", teamID, positions[teamID])
		}
	}
}

func TestRankingService_UnknownTeam(t *testing.T) {
	f := newLadderFixture(t, 4)

	if _, err := f.ranking.ApplyValidatedResult(t.Context(), memory.DivisionIDMen, "missing", "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankingService_PositionConflictSurfacesAsDependencyError(t *testing.T) {
	f := newLadderFixture(t, 4)

	stale := []team.PositionUpdate{
		{TeamID: "t3", Position: 2, PreviousPosition: 4}, // ladder has t3 at 3
		{TeamID: "t2", Position: 3, PreviousPosition: 2},
	}
	err := f.teamRepo.ApplyPositionUpdates(t.Context(), memory.DivisionIDMen, stale)
	if !errors.Is(err, team.ErrPositionConflict) {
		t.Fatalf("expected ErrPositionConflict from the store, got %v", err)
	}

	// Nothing may have been applied.
	positions := f.positions(t)
	if positions["t2"] != 2 || positions["t3"] != 3 {
		t.Fatalf("conflicting plan must not mutate the ladder, got t2=%d t3=%d", positions["t2"], positions["t3"])
	}
}

func TestRankingService_ConcurrentReshufflesStayDense(t *testing.T) {
	f := newLadderFixture(t, 8)

	// Several validated results race for the same division. Whatever the
	// interleaving, the ladder must end as a dense permutation of 1..8.
	pairs := [][2]string{
		{"t6", "t3"},
		{"t8", "t5"},
		{"t4", "t1"},
		{"t7", "t2"},
	}

	var wg sync.WaitGroup
	for _, pair := range pairs {
		wg.Add(1)
		go func(winner, loser string) {
			defer wg.Done()
			if _, err := f.ranking.ApplyValidatedResult(t.Context(), memory.DivisionIDMen, winner, loser); err != nil {
				t.Errorf("apply %s over %s: %v", winner, loser, err)
			}
		}(pair[0], pair[1])
	}
	wg.Wait()

	f.assertDense(t)
}

func TestRankingService_VerifyLadder(t *testing.T) {
	f := newLadderFixture(t, 4)

	if err := f.ranking.VerifyLadder(t.Context(), memory.DivisionIDMen); err != nil {
		t.Fatalf("expected healthy ladder, got %v", err)
	}

	// Corrupt a position behind the service's back.
	broken, _, err := getTeamState(t, f, "t2")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	broken.Position = 9
	if err := f.teamRepo.Update(t.Context(), broken); err != nil {
		t.Fatalf("update team: %v", err)
	}

	if err := f.ranking.VerifyLadder(t.Context(), memory.DivisionIDMen); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for corrupt ladder, got %v", err)
	}
}

func getTeamState(t *testing.T, f *ladderFixture, teamID string) (team.Team, bool, error) {
	t.Helper()

	return f.teamRepo.GetByID(t.Context(), teamID)
}

package team

import (
	"errors"
	"testing"
)

func ladderOf(n int) []Team {
	teams := make([]Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, Team{
			ID:         string(rune('a' + i - 1)),
			DivisionID: "div-men",
			Name:       "Team " + string(rune('A'+i-1)),
			Position:   i,
			MemberIDs:  []string{"u" + string(rune('a'+i-1))},
			CreatedBy:  "u" + string(rune('a'+i-1)),
		})
	}

	return teams
}

func positionsAfter(t *testing.T, teams []Team, updates []PositionUpdate) map[string]int {
	t.Helper()

	positions := make(map[string]int, len(teams))
	for _, item := range teams {
		positions[item.ID] = item.Position
	}
	for _, update := range updates {
		if positions[update.TeamID] != update.PreviousPosition {
			t.Fatalf("update for %s records previous position %d, ladder had %d",
				update.TeamID, update.PreviousPosition, positions[update.TeamID])
		}
		positions[update.TeamID] = update.Position
	}

	return positions
}

func TestPromotionPlanShiftsRange(t *testing.T) {
	teams := ladderOf(8)

	// Position 6 beats position 2: winner takes 2, teams at 2..5 shift down.
	updates, err := PromotionPlan(teams, "f", "b")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(updates) != 5 {
		t.Fatalf("expected 5 position updates, got %d", len(updates))
	}

	positions := positionsAfter(t, teams, updates)
	want := map[string]int{
		"a": 1, "f": 2, "b": 3, "c": 4, "d": 5, "e": 6, "g": 7, "h": 8,
	}
	for teamID, pos := range want {
		if positions[teamID] != pos {
			t.Fatalf("team %s: expected position %d, got %d", teamID, pos, positions[teamID])
		}
	}

	shifted := make([]Team, 0, len(teams))
	for _, item := range teams {
		item.Position = positions[item.ID]
		shifted = append(shifted, item)
	}
	if err := VerifyDensePositions(shifted); err != nil {
		t.Fatalf("expected dense positions after plan, got %v", err)
	}
}

func TestPromotionPlanAdjacentSwap(t *testing.T) {
	teams := ladderOf(4)

	updates, err := PromotionPlan(teams, "c", "b")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 position updates, got %d", len(updates))
	}

	positions := positionsAfter(t, teams, updates)
	if positions["c"] != 2 || positions["b"] != 3 {
		t.Fatalf("expected c=2 b=3, got c=%d b=%d", positions["c"], positions["b"])
	}
	if positions["a"] != 1 || positions["d"] != 4 {
		t.Fatalf("teams outside the range must not move")
	}
}

func TestPromotionPlanNoOpWhenWinnerAlreadyAbove(t *testing.T) {
	teams := ladderOf(5)

	updates, err := PromotionPlan(teams, "b", "d")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected empty plan when winner already outranks loser, got %d updates", len(updates))
	}
}

func TestPromotionPlanUnknownTeam(t *testing.T) {
	teams := ladderOf(3)

	if _, err := PromotionPlan(teams, "zz", "a"); !errors.Is(err, ErrNotInDivision) {
		t.Fatalf("expected ErrNotInDivision for winner, got %v", err)
	}
	if _, err := PromotionPlan(teams, "a", "zz"); !errors.Is(err, ErrNotInDivision) {
		t.Fatalf("expected ErrNotInDivision for loser, got %v", err)
	}
}

func TestVerifyDensePositions(t *testing.T) {
	teams := ladderOf(4)
	if err := VerifyDensePositions(teams); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	teams[2].Position = 2
	if err := VerifyDensePositions(teams); err == nil {
		t.Fatalf("expected error for duplicate position")
	}

	teams[2].Position = 9
	if err := VerifyDensePositions(teams); err == nil {
		t.Fatalf("expected error for out-of-range position")
	}
}

func TestResolveMovement(t *testing.T) {
	prev := 5
	if got := ResolveMovement(3, &prev); got != MovementUp {
		t.Fatalf("expected up, got %s", got)
	}
	if got := ResolveMovement(7, &prev); got != MovementDown {
		t.Fatalf("expected down, got %s", got)
	}
	if got := ResolveMovement(5, &prev); got != MovementSame {
		t.Fatalf("expected same, got %s", got)
	}
	if got := ResolveMovement(1, nil); got != MovementNew {
		t.Fatalf("expected new, got %s", got)
	}
}

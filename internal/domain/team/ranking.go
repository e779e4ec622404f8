package team

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotInDivision = errors.New("team not found in division")

// PositionUpdate is one team's move inside a ladder reshuffle.
type PositionUpdate struct {
	TeamID           string
	Position         int
	PreviousPosition int
}

// PromotionPlan computes the moves applied after a validated challenge win
// by a lower-ranked team: the winner takes the loser's position and every
// team ranked from the loser's position (inclusive) up to the winner's old
// position (exclusive) shifts down one rank. The winner's own previous
// position is recorded like any other move. An empty plan means the ladder
// already has the winner at or above the loser and nothing must change.
func PromotionPlan(teams []Team, winnerTeamID, loserTeamID string) ([]PositionUpdate, error) {
	var winner, loser *Team
	for i := range teams {
		switch teams[i].ID {
		case winnerTeamID:
			winner = &teams[i]
		case loserTeamID:
			loser = &teams[i]
		}
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: team=%s", ErrNotInDivision, winnerTeamID)
	}
	if loser == nil {
		return nil, fmt.Errorf("%w: team=%s", ErrNotInDivision, loserTeamID)
	}

	winnerOldPos, loserPos := winner.Position, loser.Position
	if winnerOldPos <= loserPos {
		return nil, nil
	}

	updates := make([]PositionUpdate, 0, winnerOldPos-loserPos+1)
	updates = append(updates, PositionUpdate{
		TeamID:           winner.ID,
		Position:         loserPos,
		PreviousPosition: winnerOldPos,
	})
	for i := range teams {
		t := teams[i]
		if t.ID == winner.ID {
			continue
		}
		if t.Position >= loserPos && t.Position < winnerOldPos {
			updates = append(updates, PositionUpdate{
				TeamID:           t.ID,
				Position:         t.Position + 1,
				PreviousPosition: t.Position,
			})
		}
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Position < updates[j].Position })

	return updates, nil
}

// VerifyDensePositions reports the first violation of the ladder invariant:
// the positions of a division's teams must be a permutation of 1..N.
func VerifyDensePositions(teams []Team) error {
	seen := make(map[int]string, len(teams))
	for _, t := range teams {
		if t.Position < 1 || t.Position > len(teams) {
			return fmt.Errorf("position %d out of range 1..%d (team=%s)", t.Position, len(teams), t.ID)
		}
		if other, ok := seen[t.Position]; ok {
			return fmt.Errorf("position %d held by both %s and %s", t.Position, other, t.ID)
		}
		seen[t.Position] = t.ID
	}

	return nil
}

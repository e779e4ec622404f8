package team

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinPlayable is the smallest roster that can actually play a padel match.
	MinPlayable = 2
	// MaxMembers is the hard roster cap per team.
	MaxMembers = 4
)

// Team competes on the ladder of exactly one division. Position is the rank
// inside that division, 1 being best; positions of a division always form a
// dense permutation of 1..N. PreviousPosition stays nil until the ladder
// moves the team for the first time.
type Team struct {
	ID               string
	DivisionID       string
	Name             string
	Position         int
	PreviousPosition *int
	MemberIDs        []string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.DivisionID == "" {
		return fmt.Errorf("division id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Position < 1 {
		return fmt.Errorf("position must be at least 1")
	}
	if len(t.MemberIDs) == 0 {
		return fmt.Errorf("team needs at least one member")
	}
	if len(t.MemberIDs) > MaxMembers {
		return fmt.Errorf("team roster cannot exceed %d members", MaxMembers)
	}
	seen := make(map[string]struct{}, len(t.MemberIDs))
	for _, memberID := range t.MemberIDs {
		if memberID == "" {
			return fmt.Errorf("member id cannot be empty")
		}
		if _, ok := seen[memberID]; ok {
			return fmt.Errorf("duplicate member: %s", memberID)
		}
		seen[memberID] = struct{}{}
	}
	if t.CreatedBy == "" {
		return fmt.Errorf("creator id is required")
	}

	return nil
}

func (t Team) HasMember(userID string) bool {
	for _, memberID := range t.MemberIDs {
		if memberID == userID {
			return true
		}
	}

	return false
}

func (t Team) IsFull() bool {
	return len(t.MemberIDs) >= MaxMembers
}

// Movement summarises how a team's rank changed relative to its previous
// position, for ladder displays.
type Movement string

const (
	MovementUp   Movement = "up"
	MovementDown Movement = "down"
	MovementSame Movement = "same"
	MovementNew  Movement = "new"
)

func ResolveMovement(position int, previous *int) Movement {
	if previous == nil {
		return MovementNew
	}
	switch {
	case *previous > position:
		return MovementUp
	case *previous < position:
		return MovementDown
	default:
		return MovementSame
	}
}

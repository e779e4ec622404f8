package team

import (
	"context"
	"errors"
)

// Store-level sentinels surfaced by Repository implementations. Use cases
// translate them into their own error taxonomy.
var (
	// ErrRosterFull reports that AddMember raced against the roster cap.
	ErrRosterFull = errors.New("team roster is full")
	// ErrPositionConflict reports that ApplyPositionUpdates found the ladder
	// changed since the update plan was computed.
	ErrPositionConflict = errors.New("ladder positions changed concurrently")
)

// Repository describes team persistence needs from use cases.
//
// Create assigns the new team the bottom position of its division ladder and
// binds every roster member's user record to the team, atomically. AddMember
// appends a player to the roster and binds their user record in the same
// operation; adding an existing member is a no-op. ApplyPositionUpdates
// applies a ladder reshuffle all-or-nothing and records each moved team's
// previous position.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListByDivision(ctx context.Context, divisionID string) ([]Team, error)
	Create(ctx context.Context, item Team) (Team, error)
	Update(ctx context.Context, item Team) error
	AddMember(ctx context.Context, teamID, userID string) error
	ApplyPositionUpdates(ctx context.Context, divisionID string, updates []PositionUpdate) error
}

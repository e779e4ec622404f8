package challenge

import (
	"context"
	"errors"
)

// ErrDuplicateActive reports that the store refused a second active
// challenge between the same two teams.
var ErrDuplicateActive = errors.New("active challenge already exists between these teams")

// Repository describes challenge persistence needs from use cases.
//
// FindActiveBetween looks for an active challenge between the two teams in
// either direction. Create surfaces ErrDuplicateActive when a concurrent
// writer won the race for the same pairing.
type Repository interface {
	GetByID(ctx context.Context, challengeID string) (Challenge, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Challenge, error)
	ListByDivision(ctx context.Context, divisionID string) ([]Challenge, error)
	FindActiveBetween(ctx context.Context, teamA, teamB string) (Challenge, bool, error)
	Create(ctx context.Context, item Challenge) error
	Update(ctx context.Context, item Challenge) error
}

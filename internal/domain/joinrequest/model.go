package joinrequest

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// JoinRequest asks a team to take the requesting player onto its roster.
// Acceptance binds the player to the team; declining leaves them a free
// agent.
type JoinRequest struct {
	ID        string
	UserID    string
	TeamID    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r JoinRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("join request id is required")
	}
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if r.TeamID == "" {
		return fmt.Errorf("team id is required")
	}
	switch r.Status {
	case StatusPending, StatusAccepted, StatusDeclined:
	default:
		return fmt.Errorf("unknown status: %q", r.Status)
	}

	return nil
}

func (r JoinRequest) IsPending() bool {
	return r.Status == StatusPending
}

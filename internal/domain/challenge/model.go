package challenge

import (
	"fmt"
	"time"
)

// Status tracks a challenge through its lifecycle. New challenges start in
// StatusAccepted: club policy makes every challenge binding on the
// challenged team, while an explicit decline transition stays available.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted:
		return true
	default:
		return false
	}
}

// Challenge is one ladder duel between two teams of the same division.
// ChallengerSets and ChallengedSets hold game counts per set, index-aligned;
// both are empty until a score is submitted. A completed challenge carries
// an unvalidated score until the opponent validates or disputes it.
type Challenge struct {
	ID                string
	DivisionID        string
	ChallengerTeamID  string
	ChallengedTeamID  string
	Status            Status
	ChallengerSets    []int
	ChallengedSets    []int
	SubmittedByTeamID string
	ScoreValidated    bool
	WinnerTeamID      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c Challenge) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("challenge id is required")
	}
	if c.DivisionID == "" {
		return fmt.Errorf("division id is required")
	}
	if c.ChallengerTeamID == "" || c.ChallengedTeamID == "" {
		return fmt.Errorf("both team ids are required")
	}
	if c.ChallengerTeamID == c.ChallengedTeamID {
		return fmt.Errorf("challenger and challenged must differ")
	}
	if !c.Status.Valid() {
		return fmt.Errorf("unknown status: %q", c.Status)
	}
	if len(c.ChallengerSets) != len(c.ChallengedSets) {
		return fmt.Errorf("set arrays must be index-aligned")
	}

	return nil
}

// IsActive reports whether the challenge still blocks a new one between the
// same two teams. A completed challenge stays active until its score has
// been validated.
func (c Challenge) IsActive() bool {
	switch c.Status {
	case StatusPending, StatusAccepted:
		return true
	case StatusCompleted:
		return !c.ScoreValidated
	default:
		return false
	}
}

func (c Challenge) HasTeam(teamID string) bool {
	return teamID != "" && (c.ChallengerTeamID == teamID || c.ChallengedTeamID == teamID)
}

// Opponent returns the other side's team id, or "" when teamID is neither.
func (c Challenge) Opponent(teamID string) string {
	switch teamID {
	case c.ChallengerTeamID:
		return c.ChallengedTeamID
	case c.ChallengedTeamID:
		return c.ChallengerTeamID
	default:
		return ""
	}
}

// HasScore reports whether an unvalidated or validated score is on record.
func (c Challenge) HasScore() bool {
	return len(c.ChallengerSets) > 0
}

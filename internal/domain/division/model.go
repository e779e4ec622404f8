package division

import (
	"fmt"
	"strings"
	"time"
)

const (
	CodeMen   = "men"
	CodeWomen = "women"
)

// Division is one of the two disjoint ladder partitions teams compete in.
// Rankings are never compared across divisions.
type Division struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Division) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("division id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("division name is required")
	}
	if d.Code != CodeMen && d.Code != CodeWomen {
		return fmt.Errorf("unknown division code: %q", d.Code)
	}

	return nil
}

// Settings is the single club-wide challenge policy record. Challenges
// created before ChallengeCutoverAt may target any higher-ranked team;
// from the cutover on, targets must sit within MaxPositionDifference ranks
// above the challenger. A missing record disables challenging entirely.
type Settings struct {
	ChallengeCutoverAt    time.Time
	MaxPositionDifference int
	UpdatedAt             time.Time
}

func (s Settings) Validate() error {
	if s.ChallengeCutoverAt.IsZero() {
		return fmt.Errorf("challenge cutover date is required")
	}
	if s.MaxPositionDifference <= 0 {
		return fmt.Errorf("max position difference must be greater than zero")
	}

	return nil
}

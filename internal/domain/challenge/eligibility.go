package challenge

import (
	"errors"
	"fmt"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
)

var ErrIneligible = errors.New("challenge not allowed")

// CanChallenge decides whether challenger may challenge challenged under the
// club's ladder rules; nil means eligible. Before the cutover date any
// higher-ranked team in the same division is a valid target. From the
// cutover on, the target must additionally sit within
// settings.MaxPositionDifference ranks above the challenger. Unusable
// settings fail closed: no challenge is allowed until an administrator has
// configured the ladder.
func CanChallenge(challenger, challenged team.Team, settings division.Settings, now time.Time) error {
	if challenger.ID == challenged.ID {
		return fmt.Errorf("%w: a team cannot challenge itself", ErrIneligible)
	}
	if challenger.DivisionID != challenged.DivisionID {
		return fmt.Errorf("%w: teams play in different divisions", ErrIneligible)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: ladder settings are not configured: %v", ErrIneligible, err)
	}

	diff := challenger.Position - challenged.Position
	if diff <= 0 {
		return fmt.Errorf("%w: only higher-ranked teams can be challenged", ErrIneligible)
	}
	if now.Before(settings.ChallengeCutoverAt) {
		return nil
	}
	if diff > settings.MaxPositionDifference {
		return fmt.Errorf("%w: target is %d ranks above, limit is %d",
			ErrIneligible, diff, settings.MaxPositionDifference)
	}

	return nil
}

package challenge

import (
	"errors"
	"fmt"
)

var (
	ErrSetScoreInvalid    = errors.New("invalid set score")
	ErrMatchIncomplete    = errors.New("match score incomplete")
	ErrThirdSetNotAllowed = errors.New("third set not allowed")
)

// Side identifies one side of a challenge.
type Side int

const (
	SideNone Side = iota
	SideChallenger
	SideChallenged
)

func (s Side) String() string {
	switch s {
	case SideChallenger:
		return "challenger"
	case SideChallenged:
		return "challenged"
	default:
		return "none"
	}
}

// ValidateSetScore checks one set's game counts under padel set rules: the
// winner reaches 6 games with the loser on 0..4, or 7 games with the loser
// on 5 or 6. Sets cannot tie.
func ValidateSetScore(a, b int) error {
	if a < 0 || b < 0 {
		return fmt.Errorf("%w: games cannot be negative (%d-%d)", ErrSetScoreInvalid, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: a set cannot tie (%d-%d)", ErrSetScoreInvalid, a, b)
	}

	won, lost := a, b
	if b > a {
		won, lost = b, a
	}
	switch won {
	case 6:
		if lost <= 4 {
			return nil
		}
	case 7:
		if lost == 5 || lost == 6 {
			return nil
		}
	}

	return fmt.Errorf("%w: %d-%d is not a playable set result", ErrSetScoreInvalid, a, b)
}

// ValidateMatchScore checks a best-of-three submission and returns the
// winning side. The two slices are index-aligned game counts per set. Sets
// one and two are mandatory; a third set is forbidden when one side took
// the first two and required when the first two split.
func ValidateMatchScore(challengerSets, challengedSets []int) (Side, error) {
	if len(challengerSets) != len(challengedSets) {
		return SideNone, fmt.Errorf("%w: sides reported %d and %d sets",
			ErrSetScoreInvalid, len(challengerSets), len(challengedSets))
	}
	if len(challengerSets) < 2 {
		return SideNone, fmt.Errorf("%w: sets one and two are mandatory", ErrMatchIncomplete)
	}
	if len(challengerSets) > 3 {
		return SideNone, fmt.Errorf("%w: at most three sets may be reported", ErrSetScoreInvalid)
	}

	var challengerWins, challengedWins int
	countSet := func(index int) error {
		if err := ValidateSetScore(challengerSets[index], challengedSets[index]); err != nil {
			return fmt.Errorf("set %d: %w", index+1, err)
		}
		if challengerSets[index] > challengedSets[index] {
			challengerWins++
		} else {
			challengedWins++
		}

		return nil
	}

	for i := 0; i < 2; i++ {
		if err := countSet(i); err != nil {
			return SideNone, err
		}
	}

	decided := challengerWins == 2 || challengedWins == 2
	switch {
	case decided && len(challengerSets) == 3:
		return SideNone, fmt.Errorf("%w: match was decided two sets to zero", ErrThirdSetNotAllowed)
	case !decided && len(challengerSets) == 2:
		return SideNone, fmt.Errorf("%w: a deciding third set is required at one set all", ErrMatchIncomplete)
	}

	if len(challengerSets) == 3 {
		if err := countSet(2); err != nil {
			return SideNone, err
		}
	}

	switch {
	case challengerWins > challengedWins:
		return SideChallenger, nil
	case challengedWins > challengerWins:
		return SideChallenged, nil
	default:
		return SideNone, fmt.Errorf("%w: no side won a majority of sets", ErrMatchIncomplete)
	}
}

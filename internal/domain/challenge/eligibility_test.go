package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
)

func TestCanChallenge(t *testing.T) {
	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	baseSettings := division.Settings{
		ChallengeCutoverAt:    now.Add(-24 * time.Hour),
		MaxPositionDifference: 3,
	}
	baseChallenger := team.Team{
		ID:         "team-low",
		DivisionID: "div-men",
		Name:       "Low Riders",
		Position:   6,
		MemberIDs:  []string{"u1", "u2"},
		CreatedBy:  "u1",
	}
	baseChallenged := team.Team{
		ID:         "team-high",
		DivisionID: "div-men",
		Name:       "High Rollers",
		Position:   4,
		MemberIDs:  []string{"u3", "u4"},
		CreatedBy:  "u3",
	}

	tests := []struct {
		name      string
		mutate    func(challenger, challenged *team.Team, settings *division.Settings, now *time.Time)
		targetErr error
	}{
		{
			name:   "two ranks up within limit",
			mutate: func(_, _ *team.Team, _ *division.Settings, _ *time.Time) {},
		},
		{
			name: "exactly at the limit",
			mutate: func(challenger, _ *team.Team, _ *division.Settings, _ *time.Time) {
				challenger.Position = 7
			},
		},
		{
			name: "one rank beyond the limit",
			mutate: func(challenger, _ *team.Team, _ *division.Settings, _ *time.Time) {
				challenger.Position = 8
			},
			targetErr: ErrIneligible,
		},
		{
			name: "any rank allowed before cutover",
			mutate: func(challenger, _ *team.Team, settings *division.Settings, now *time.Time) {
				challenger.Position = 40
				settings.ChallengeCutoverAt = now.Add(time.Hour)
			},
		},
		{
			name: "downward challenge rejected before cutover",
			mutate: func(challenger, challenged *team.Team, settings *division.Settings, now *time.Time) {
				challenger.Position = 2
				challenged.Position = 5
				settings.ChallengeCutoverAt = now.Add(time.Hour)
			},
			targetErr: ErrIneligible,
		},
		{
			name: "downward challenge rejected after cutover",
			mutate: func(challenger, challenged *team.Team, _ *division.Settings, _ *time.Time) {
				challenger.Position = 2
				challenged.Position = 5
			},
			targetErr: ErrIneligible,
		},
		{
			name: "equal position rejected",
			mutate: func(challenger, challenged *team.Team, _ *division.Settings, _ *time.Time) {
				challenger.Position = 4
				challenged.Position = 4
			},
			targetErr: ErrIneligible,
		},
		{
			name: "self challenge",
			mutate: func(challenger, challenged *team.Team, _ *division.Settings, _ *time.Time) {
				challenged.ID = challenger.ID
			},
			targetErr: ErrIneligible,
		},
		{
			name: "cross division",
			mutate: func(_, challenged *team.Team, _ *division.Settings, _ *time.Time) {
				challenged.DivisionID = "div-women"
			},
			targetErr: ErrIneligible,
		},
		{
			name: "missing settings fail closed",
			mutate: func(_, _ *team.Team, settings *division.Settings, _ *time.Time) {
				*settings = division.Settings{}
			},
			targetErr: ErrIneligible,
		},
		{
			name: "zero max difference fails closed",
			mutate: func(_, _ *team.Team, settings *division.Settings, _ *time.Time) {
				settings.MaxPositionDifference = 0
			},
			targetErr: ErrIneligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			challenger := baseChallenger
			challenged := baseChallenged
			settings := baseSettings
			at := now
			tt.mutate(&challenger, &challenged, &settings, &at)

			err := CanChallenge(challenger, challenged, settings, at)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

package memory

import (
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
)

const (
	DivisionIDMen   = "div-men"
	DivisionIDWomen = "div-women"
)

func SeedDivisions() []division.Division {
	createdAt := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

	return []division.Division{
		{
			ID:        DivisionIDMen,
			Name:      "Men's Division",
			Code:      division.CodeMen,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		{
			ID:        DivisionIDWomen,
			Name:      "Women's Division",
			Code:      division.CodeWomen,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
	}
}

func SeedSettings() division.Settings {
	return division.Settings{
		ChallengeCutoverAt:    time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		MaxPositionDifference: 3,
		UpdatedAt:             time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC),
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: "usr-milan", Name: "Milan Roux", Gender: user.GenderMale, Rating: 1450, TeamID: "team-smashers"},
		{ID: "usr-theo", Name: "Theo Marais", Gender: user.GenderMale, Rating: 1390, TeamID: "team-smashers"},
		{ID: "usr-jaco", Name: "Jaco Venter", Gender: user.GenderMale, Rating: 1320, TeamID: "team-drivers"},
		{ID: "usr-pieter", Name: "Pieter Nel", Gender: user.GenderMale, Rating: 1280, TeamID: "team-drivers"},
		{ID: "usr-dawid", Name: "Dawid Fourie", Gender: user.GenderMale, Rating: 1250, TeamID: "team-loopers"},
		{ID: "usr-ruan", Name: "Ruan Botha", Gender: user.GenderMale, Rating: 1210, TeamID: "team-loopers"},
		{ID: "usr-wihan", Name: "Wihan Lombard", Gender: user.GenderMale, Rating: 1100},
		{ID: "usr-anke", Name: "Anke Steyn", Gender: user.GenderFemale, Rating: 1410, TeamID: "team-topspins"},
		{ID: "usr-elna", Name: "Elna Kriel", Gender: user.GenderFemale, Rating: 1360, TeamID: "team-topspins"},
		{ID: "usr-mia", Name: "Mia Bester", Gender: user.GenderFemale, Rating: 1330, TeamID: "team-volleys"},
		{ID: "usr-lize", Name: "Lize Joubert", Gender: user.GenderFemale, Rating: 1300, TeamID: "team-volleys"},
		{ID: "usr-carla", Name: "Carla Smit", Gender: user.GenderFemale, Rating: 1150},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "team-smashers", DivisionID: DivisionIDMen, Name: "Smashers", Position: 1,
			MemberIDs: []string{"usr-milan", "usr-theo"}, CreatedBy: "usr-milan"},
		{ID: "team-drivers", DivisionID: DivisionIDMen, Name: "Baseline Drivers", Position: 2,
			MemberIDs: []string{"usr-jaco", "usr-pieter"}, CreatedBy: "usr-jaco"},
		{ID: "team-loopers", DivisionID: DivisionIDMen, Name: "Lob Loopers", Position: 3,
			MemberIDs: []string{"usr-dawid", "usr-ruan"}, CreatedBy: "usr-dawid"},
		{ID: "team-topspins", DivisionID: DivisionIDWomen, Name: "Topspins", Position: 1,
			MemberIDs: []string{"usr-anke", "usr-elna"}, CreatedBy: "usr-anke"},
		{ID: "team-volleys", DivisionID: DivisionIDWomen, Name: "Flying Volleys", Position: 2,
			MemberIDs: []string{"usr-mia", "usr-lize"}, CreatedBy: "usr-mia"},
	}
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
)

var fixtureNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

type seqIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	tables []string
	events []string
}

func (n *recordingNotifier) TableChanged(_ context.Context, table string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.tables = append(n.tables, table)
}

func (n *recordingNotifier) Event(_ context.Context, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) eventCount(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, recorded := range n.events {
		if recorded == eventType {
			count++
		}
	}

	return count
}

type ladderFixture struct {
	divisionRepo  *memory.DivisionRepository
	settingsRepo  *memory.SettingsRepository
	userRepo      *memory.UserRepository
	teamRepo      *memory.TeamRepository
	challengeRepo *memory.ChallengeRepository
	joinRepo      *memory.JoinRequestRepository
	notifier      *recordingNotifier

	users      *UserService
	teams      *TeamService
	divisions  *DivisionService
	ranking    *RankingService
	challenges *ChallengeService
}

// newLadderFixture wires the service graph over in-memory stores with a
// men's ladder of the given size: team "t<pos>" at position <pos> with
// players "u<pos>a" and "u<pos>b". Settings put the ladder in the
// post-cutover regime with a position difference limit of 3.
func newLadderFixture(t *testing.T, size int) *ladderFixture {
	t.Helper()

	users := make([]user.User, 0, size*2)
	teams := make([]team.Team, 0, size)
	for i := 1; i <= size; i++ {
		a := fmt.Sprintf("u%da", i)
		b := fmt.Sprintf("u%db", i)
		teamID := fmt.Sprintf("t%d", i)
		users = append(users,
			user.User{ID: a, Name: "Player " + a, Gender: user.GenderMale, Rating: 1200, TeamID: teamID},
			user.User{ID: b, Name: "Player " + b, Gender: user.GenderMale, Rating: 1200, TeamID: teamID},
		)
		teams = append(teams, team.Team{
			ID:         teamID,
			DivisionID: memory.DivisionIDMen,
			Name:       fmt.Sprintf("Team %d", i),
			Position:   i,
			MemberIDs:  []string{a, b},
			CreatedBy:  a,
		})
	}

	f := &ladderFixture{
		divisionRepo: memory.NewDivisionRepository(memory.SeedDivisions()),
		settingsRepo: memory.NewSeededSettingsRepository(division.Settings{
			ChallengeCutoverAt:    fixtureNow.Add(-30 * 24 * time.Hour),
			MaxPositionDifference: 3,
			UpdatedAt:             fixtureNow.Add(-30 * 24 * time.Hour),
		}),
		userRepo:      memory.NewUserRepository(users),
		challengeRepo: memory.NewChallengeRepository(),
		joinRepo:      memory.NewJoinRequestRepository(),
		notifier:      &recordingNotifier{},
	}
	f.teamRepo = memory.NewTeamRepository(teams, f.userRepo)

	f.users = NewUserService(f.userRepo, f.divisionRepo, &seqIDGenerator{prefix: "usr"})
	f.teams = NewTeamService(f.teamRepo, f.userRepo, f.divisionRepo, f.joinRepo, f.notifier, &seqIDGenerator{prefix: "team"})
	f.divisions = NewDivisionService(f.divisionRepo, f.settingsRepo, f.notifier)
	f.ranking = NewRankingService(f.teamRepo, f.notifier, logging.NewNop())
	f.challenges = NewChallengeService(f.challengeRepo, f.teamRepo, f.settingsRepo, f.ranking, f.notifier, &seqIDGenerator{prefix: "chl"})

	fixedNow := func() time.Time { return fixtureNow }
	f.users.now = fixedNow
	f.teams.now = fixedNow
	f.divisions.now = fixedNow
	f.ranking.now = fixedNow
	f.challenges.now = fixedNow

	return f
}

// fixtureMember returns the first player of a fixture team, e.g. "u3a" for
// team "t3".
func fixtureMember(teamID string) string {
	return "u" + strings.TrimPrefix(teamID, "t") + "a"
}

func (f *ladderFixture) mustCreateChallenge(t *testing.T, challengerTeamID, challengedTeamID string) challenge.Challenge {
	t.Helper()

	item, err := f.challenges.CreateChallenge(t.Context(), CreateChallengeInput{
		ActorUserID:      fixtureMember(challengerTeamID),
		ChallengerTeamID: challengerTeamID,
		ChallengedTeamID: challengedTeamID,
	})
	if err != nil {
		t.Fatalf("create challenge %s vs %s: %v", challengerTeamID, challengedTeamID, err)
	}

	return item
}

func (f *ladderFixture) mustSubmitScore(t *testing.T, challengeID, actorUserID string, challengerSets, challengedSets []int) challenge.Challenge {
	t.Helper()

	item, err := f.challenges.SubmitScore(t.Context(), SubmitScoreInput{
		ActorUserID:    actorUserID,
		ChallengeID:    challengeID,
		ChallengerSets: challengerSets,
		ChallengedSets: challengedSets,
	})
	if err != nil {
		t.Fatalf("submit score for %s: %v", challengeID, err)
	}

	return item
}

func (f *ladderFixture) positions(t *testing.T) map[string]int {
	t.Helper()

	teams, err := f.teamRepo.ListByDivision(t.Context(), memory.DivisionIDMen)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}

	positions := make(map[string]int, len(teams))
	for _, item := range teams {
		positions[item.ID] = item.Position
	}

	return positions
}

func (f *ladderFixture) assertDense(t *testing.T) {
	t.Helper()

	teams, err := f.teamRepo.ListByDivision(t.Context(), memory.DivisionIDMen)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if err := team.VerifyDensePositions(teams); err != nil {
		t.Fatalf("ladder positions not dense: %v", err)
	}
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
)

// TeamRepository keeps the division ladders in process memory. Writes that
// touch rosters also stamp the members' user records through the linked
// UserRepository, mirroring what the SQL store does in one transaction.
type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
	users *UserRepository
}

func NewTeamRepository(teams []team.Team, users *UserRepository) *TeamRepository {
	items := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		items[item.ID] = cloneTeam(item)
	}

	return &TeamRepository{items: items, users: users}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return cloneTeam(item), true, nil
}

func (r *TeamRepository) ListByDivision(_ context.Context, divisionID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		if item.DivisionID == divisionID {
			out = append(out, cloneTeam(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return team.Team{}, fmt.Errorf("team %s already exists", item.ID)
	}

	bottom := 0
	for _, existing := range r.items {
		if existing.DivisionID == item.DivisionID {
			bottom++
		}
	}
	item.Position = bottom + 1
	item.PreviousPosition = nil

	r.items[item.ID] = cloneTeam(item)
	if r.users != nil {
		r.users.bindTeam(item.MemberIDs, item.ID)
	}

	return cloneTeam(item), nil
}

func (r *TeamRepository) Update(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("team %s not found", item.ID)
	}
	r.items[item.ID] = cloneTeam(item)

	return nil
}

func (r *TeamRepository) AddMember(_ context.Context, teamID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[teamID]
	if !exists {
		return fmt.Errorf("team %s not found", teamID)
	}
	if item.HasMember(userID) {
		return nil
	}
	if item.IsFull() {
		return fmt.Errorf("%w: team=%s", team.ErrRosterFull, teamID)
	}

	item.MemberIDs = append(item.MemberIDs, userID)
	r.items[teamID] = item
	if r.users != nil {
		r.users.bindTeam([]string{userID}, teamID)
	}

	return nil
}

func (r *TeamRepository) ApplyPositionUpdates(_ context.Context, divisionID string, updates []team.PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify the plan against the live ladder before touching anything.
	for _, update := range updates {
		item, exists := r.items[update.TeamID]
		if !exists || item.DivisionID != divisionID {
			return fmt.Errorf("%w: team=%s division=%s", team.ErrPositionConflict, update.TeamID, divisionID)
		}
		if item.Position != update.PreviousPosition {
			return fmt.Errorf("%w: team=%s expected position %d, found %d",
				team.ErrPositionConflict, update.TeamID, update.PreviousPosition, item.Position)
		}
	}

	for _, update := range updates {
		item := r.items[update.TeamID]
		previous := update.PreviousPosition
		item.Position = update.Position
		item.PreviousPosition = &previous
		r.items[update.TeamID] = item
	}

	return nil
}

func cloneTeam(t team.Team) team.Team {
	copied := t
	copied.MemberIDs = append([]string(nil), t.MemberIDs...)
	if t.PreviousPosition != nil {
		previous := *t.PreviousPosition
		copied.PreviousPosition = &previous
	}

	return copied
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
)

type ChallengeRepository struct {
	mu    sync.RWMutex
	items map[string]challenge.Challenge
}

func NewChallengeRepository() *ChallengeRepository {
	return &ChallengeRepository{items: make(map[string]challenge.Challenge)}
}

func (r *ChallengeRepository) GetByID(_ context.Context, challengeID string) (challenge.Challenge, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[challengeID]
	if !ok {
		return challenge.Challenge{}, false, nil
	}

	return cloneChallenge(item), true, nil
}

func (r *ChallengeRepository) ListByTeam(_ context.Context, teamID string) ([]challenge.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]challenge.Challenge, 0, len(r.items))
	for _, item := range r.items {
		if item.HasTeam(teamID) {
			out = append(out, cloneChallenge(item))
		}
	}
	sortChallenges(out)

	return out, nil
}

func (r *ChallengeRepository) ListByDivision(_ context.Context, divisionID string) ([]challenge.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]challenge.Challenge, 0, len(r.items))
	for _, item := range r.items {
		if item.DivisionID == divisionID {
			out = append(out, cloneChallenge(item))
		}
	}
	sortChallenges(out)

	return out, nil
}

func (r *ChallengeRepository) FindActiveBetween(_ context.Context, teamA, teamB string) (challenge.Challenge, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if item, ok := r.findActiveBetweenLocked(teamA, teamB); ok {
		return cloneChallenge(item), true, nil
	}

	return challenge.Challenge{}, false, nil
}

func (r *ChallengeRepository) Create(_ context.Context, item challenge.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("challenge %s already exists", item.ID)
	}
	if item.IsActive() {
		if _, busy := r.findActiveBetweenLocked(item.ChallengerTeamID, item.ChallengedTeamID); busy {
			return fmt.Errorf("%w: teams %s and %s",
				challenge.ErrDuplicateActive, item.ChallengerTeamID, item.ChallengedTeamID)
		}
	}
	r.items[item.ID] = cloneChallenge(item)

	return nil
}

func (r *ChallengeRepository) Update(_ context.Context, item challenge.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("challenge %s not found", item.ID)
	}
	r.items[item.ID] = cloneChallenge(item)

	return nil
}

func (r *ChallengeRepository) findActiveBetweenLocked(teamA, teamB string) (challenge.Challenge, bool) {
	for _, item := range r.items {
		if !item.IsActive() {
			continue
		}
		if item.HasTeam(teamA) && item.HasTeam(teamB) {
			return item, true
		}
	}

	return challenge.Challenge{}, false
}

func sortChallenges(items []challenge.Challenge) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func cloneChallenge(c challenge.Challenge) challenge.Challenge {
	copied := c
	copied.ChallengerSets = append([]int(nil), c.ChallengerSets...)
	copied.ChallengedSets = append([]int(nil), c.ChallengedSets...)

	return copied
}

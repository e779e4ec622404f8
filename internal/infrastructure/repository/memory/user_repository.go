package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	for _, item := range users {
		items[item.ID] = item
	}

	return &UserRepository{items: items}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	if !ok {
		return user.User{}, false, nil
	}

	return item, true, nil
}

func (r *UserRepository) ListByTeam(_ context.Context, teamID string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, 4)
	for _, item := range r.items {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *UserRepository) Create(_ context.Context, item user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("user %s already exists", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func (r *UserRepository) Update(_ context.Context, item user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("user %s not found", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

// bindTeam stamps the users' team membership; TeamRepository calls it under
// its own write lock so roster and membership stay in step.
func (r *UserRepository) bindTeam(userIDs []string, teamID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, userID := range userIDs {
		item, ok := r.items[userID]
		if !ok {
			continue
		}
		item.TeamID = teamID
		r.items[userID] = item
	}
}

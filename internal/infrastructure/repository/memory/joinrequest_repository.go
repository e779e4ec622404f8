package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
)

type JoinRequestRepository struct {
	mu    sync.RWMutex
	items map[string]joinrequest.JoinRequest
}

func NewJoinRequestRepository() *JoinRequestRepository {
	return &JoinRequestRepository{items: make(map[string]joinrequest.JoinRequest)}
}

func (r *JoinRequestRepository) GetByID(_ context.Context, requestID string) (joinrequest.JoinRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[requestID]
	if !ok {
		return joinrequest.JoinRequest{}, false, nil
	}

	return item, true, nil
}

func (r *JoinRequestRepository) ListByTeam(_ context.Context, teamID string) ([]joinrequest.JoinRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]joinrequest.JoinRequest, 0, len(r.items))
	for _, item := range r.items {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}
	sortJoinRequests(out)

	return out, nil
}

func (r *JoinRequestRepository) ListByUser(_ context.Context, userID string) ([]joinrequest.JoinRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]joinrequest.JoinRequest, 0, len(r.items))
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sortJoinRequests(out)

	return out, nil
}

func (r *JoinRequestRepository) FindPendingByUserAndTeam(_ context.Context, userID, teamID string) (joinrequest.JoinRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.TeamID == teamID && item.IsPending() {
			return item, true, nil
		}
	}

	return joinrequest.JoinRequest{}, false, nil
}

func (r *JoinRequestRepository) Create(_ context.Context, item joinrequest.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("join request %s already exists", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func (r *JoinRequestRepository) Update(_ context.Context, item joinrequest.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("join request %s not found", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func sortJoinRequests(items []joinrequest.JoinRequest) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

package memory

import (
	"context"
	"sync"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
)

type DivisionRepository struct {
	mu    sync.RWMutex
	items []division.Division
}

func NewDivisionRepository(divisions []division.Division) *DivisionRepository {
	return &DivisionRepository{items: append([]division.Division(nil), divisions...)}
}

func (r *DivisionRepository) List(_ context.Context) ([]division.Division, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]division.Division, 0, len(r.items))
	out = append(out, r.items...)

	return out, nil
}

func (r *DivisionRepository) GetByID(_ context.Context, divisionID string) (division.Division, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ID == divisionID {
			return item, true, nil
		}
	}

	return division.Division{}, false, nil
}

func (r *DivisionRepository) GetByCode(_ context.Context, code string) (division.Division, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Code == code {
			return item, true, nil
		}
	}

	return division.Division{}, false, nil
}

type SettingsRepository struct {
	mu       sync.RWMutex
	settings division.Settings
	set      bool
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func NewSeededSettingsRepository(settings division.Settings) *SettingsRepository {
	return &SettingsRepository{settings: settings, set: true}
}

func (r *SettingsRepository) Get(_ context.Context) (division.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.set {
		return division.Settings{}, false, nil
	}

	return r.settings, true, nil
}

func (r *SettingsRepository) Upsert(_ context.Context, settings division.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = settings
	r.set = true

	return nil
}

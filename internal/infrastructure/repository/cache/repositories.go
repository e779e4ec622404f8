package cache

import (
	"context"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	basecache "github.com/Keanutjardim/FRPadelLeague/internal/platform/cache"
)

// DivisionRepository caches the read-mostly division catalogue.
type DivisionRepository struct {
	next  division.Repository
	cache *basecache.Store
}

func NewDivisionRepository(next division.Repository, cache *basecache.Store) *DivisionRepository {
	return &DivisionRepository{next: next, cache: cache}
}

func (r *DivisionRepository) List(ctx context.Context) ([]division.Division, error) {
	v, err := r.cache.GetOrLoad(ctx, "division:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]division.Division(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]division.Division)
	return append([]division.Division(nil), items...), nil
}

func (r *DivisionRepository) GetByID(ctx context.Context, divisionID string) (division.Division, bool, error) {
	key := "division:id:" + divisionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, divisionID)
		if err != nil {
			return nil, err
		}
		return cachedDivision{value: item, exists: exists}, nil
	})
	if err != nil {
		return division.Division{}, false, err
	}

	cached, _ := v.(cachedDivision)
	return cached.value, cached.exists, nil
}

func (r *DivisionRepository) GetByCode(ctx context.Context, code string) (division.Division, bool, error) {
	key := "division:code:" + code
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return cachedDivision{value: item, exists: exists}, nil
	})
	if err != nil {
		return division.Division{}, false, err
	}

	cached, _ := v.(cachedDivision)
	return cached.value, cached.exists, nil
}

type cachedDivision struct {
	value  division.Division
	exists bool
}

// SettingsRepository caches the single ladder settings row. Every
// eligibility check reads it, so a short TTL takes real load off the store.
type SettingsRepository struct {
	next  division.SettingsRepository
	cache *basecache.Store
}

func NewSettingsRepository(next division.SettingsRepository, cache *basecache.Store) *SettingsRepository {
	return &SettingsRepository{next: next, cache: cache}
}

func (r *SettingsRepository) Get(ctx context.Context) (division.Settings, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, settingsKey, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.Get(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSettings{value: item, exists: exists}, nil
	})
	if err != nil {
		return division.Settings{}, false, err
	}

	cached, _ := v.(cachedSettings)
	return cached.value, cached.exists, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings division.Settings) error {
	if err := r.next.Upsert(ctx, settings); err != nil {
		return err
	}
	r.cache.Delete(ctx, settingsKey)
	return nil
}

type cachedSettings struct {
	value  division.Settings
	exists bool
}

const settingsKey = "settings:ladder"

// TeamRepository caches ladder reads and drops the affected keys on every
// write. A stale ladder read can still slip in from another instance; the
// position-update conflict check downstream keeps that harmless.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, teamByIDKey(teamID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: cloneTeam(item), exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cloneTeam(cached.value), cached.exists, nil
}

func (r *TeamRepository) ListByDivision(ctx context.Context, divisionID string) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, teamListKey(divisionID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByDivision(ctx, divisionID)
		if err != nil {
			return nil, err
		}
		out := make([]team.Team, 0, len(items))
		for _, item := range items {
			out = append(out, cloneTeam(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		out = append(out, cloneTeam(item))
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return team.Team{}, err
	}

	r.cache.Delete(ctx, teamByIDKey(created.ID))
	r.cache.Delete(ctx, teamListKey(created.DivisionID))
	return created, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}

	r.cache.Delete(ctx, teamByIDKey(item.ID))
	r.cache.Delete(ctx, teamListKey(item.DivisionID))
	return nil
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	if err := r.next.AddMember(ctx, teamID, userID); err != nil {
		return err
	}

	r.cache.Delete(ctx, teamByIDKey(teamID))
	// The division is not known here; drop every ladder listing.
	r.cache.DeletePrefix(ctx, teamListPrefix)
	return nil
}

func (r *TeamRepository) ApplyPositionUpdates(ctx context.Context, divisionID string, updates []team.PositionUpdate) error {
	if err := r.next.ApplyPositionUpdates(ctx, divisionID, updates); err != nil {
		return err
	}

	r.cache.Delete(ctx, teamListKey(divisionID))
	for _, update := range updates {
		r.cache.Delete(ctx, teamByIDKey(update.TeamID))
	}
	return nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

func cloneTeam(t team.Team) team.Team {
	out := t
	out.MemberIDs = append([]string(nil), t.MemberIDs...)
	if t.PreviousPosition != nil {
		previous := *t.PreviousPosition
		out.PreviousPosition = &previous
	}
	return out
}

const teamListPrefix = "team:list:division:"

func teamByIDKey(teamID string) string {
	return "team:id:" + teamID
}

func teamListKey(divisionID string) string {
	return teamListPrefix + divisionID
}

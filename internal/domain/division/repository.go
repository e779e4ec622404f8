package division

import "context"

// Repository describes division persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Division, error)
	GetByID(ctx context.Context, divisionID string) (Division, bool, error)
	GetByCode(ctx context.Context, code string) (Division, bool, error)
}

// SettingsRepository stores the club-wide challenge policy. The record is a
// singleton; Get reports false until an administrator has configured it.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, bool, error)
	Upsert(ctx context.Context, settings Settings) error
}

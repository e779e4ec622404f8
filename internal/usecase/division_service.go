package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
)

type UpdateSettingsInput struct {
	ChallengeCutoverAt    time.Time
	MaxPositionDifference int
}

type DivisionService struct {
	divisionRepo division.Repository
	settingsRepo division.SettingsRepository
	notifier     Notifier
	now          func() time.Time
}

func NewDivisionService(
	divisionRepo division.Repository,
	settingsRepo division.SettingsRepository,
	notifier Notifier,
) *DivisionService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &DivisionService{
		divisionRepo: divisionRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *DivisionService) ListDivisions(ctx context.Context) ([]division.Division, error) {
	divisions, err := s.divisionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}

	return divisions, nil
}

func (s *DivisionService) GetDivision(ctx context.Context, divisionID string) (division.Division, error) {
	divisionID = strings.TrimSpace(divisionID)
	if divisionID == "" {
		return division.Division{}, fmt.Errorf("%w: division id is required", ErrInvalidInput)
	}

	item, exists, err := s.divisionRepo.GetByID(ctx, divisionID)
	if err != nil {
		return division.Division{}, fmt.Errorf("get division by id: %w", err)
	}
	if !exists {
		return division.Division{}, fmt.Errorf("%w: division=%s", ErrNotFound, divisionID)
	}

	return item, nil
}

func (s *DivisionService) GetSettings(ctx context.Context) (division.Settings, error) {
	settings, exists, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return division.Settings{}, fmt.Errorf("get ladder settings: %w", err)
	}
	if !exists {
		return division.Settings{}, fmt.Errorf("%w: ladder settings not configured", ErrNotFound)
	}

	return settings, nil
}

// UpdateSettings replaces the club-wide challenge policy. Challenges
// created before the call keep their outcome; eligibility of new challenges
// is evaluated against the stored values at creation time.
func (s *DivisionService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (division.Settings, error) {
	settings := division.Settings{
		ChallengeCutoverAt:    input.ChallengeCutoverAt.UTC(),
		MaxPositionDifference: input.MaxPositionDifference,
		UpdatedAt:             s.now().UTC(),
	}
	if err := settings.Validate(); err != nil {
		return division.Settings{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return division.Settings{}, fmt.Errorf("upsert ladder settings: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableSettings)

	return settings, nil
}

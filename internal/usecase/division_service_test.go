package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
)

func TestDivisionService_Divisions(t *testing.T) {
	f := newLadderFixture(t, 1)

	divisions, err := f.divisions.ListDivisions(t.Context())
	if err != nil {
		t.Fatalf("list divisions: %v", err)
	}
	if len(divisions) != 2 {
		t.Fatalf("expected 2 divisions, got %d", len(divisions))
	}

	item, err := f.divisions.GetDivision(t.Context(), memory.DivisionIDMen)
	if err != nil {
		t.Fatalf("get division: %v", err)
	}
	if item.Code != "men" {
		t.Fatalf("expected men code, got %s", item.Code)
	}

	if _, err := f.divisions.GetDivision(t.Context(), "div-mixed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDivisionService_Settings(t *testing.T) {
	f := newLadderFixture(t, 1)

	current, err := f.divisions.GetSettings(t.Context())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if current.MaxPositionDifference != 3 {
		t.Fatalf("expected seeded limit 3, got %d", current.MaxPositionDifference)
	}

	cutover := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.divisions.UpdateSettings(t.Context(), UpdateSettingsInput{
		ChallengeCutoverAt:    cutover,
		MaxPositionDifference: 5,
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if !updated.ChallengeCutoverAt.Equal(cutover) || updated.MaxPositionDifference != 5 {
		t.Fatalf("unexpected stored settings: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(fixtureNow) {
		t.Fatalf("expected updated_at %v, got %v", fixtureNow, updated.UpdatedAt)
	}

	if _, err := f.divisions.UpdateSettings(t.Context(), UpdateSettingsInput{
		MaxPositionDifference: 5,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero cutover, got %v", err)
	}
	if _, err := f.divisions.UpdateSettings(t.Context(), UpdateSettingsInput{
		ChallengeCutoverAt:    cutover,
		MaxPositionDifference: 0,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero limit, got %v", err)
	}
}

func TestDivisionService_SettingsMissing(t *testing.T) {
	f := newLadderFixture(t, 1)
	f.divisions.settingsRepo = memory.NewSettingsRepository()

	if _, err := f.divisions.GetSettings(t.Context()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset settings, got %v", err)
	}
}

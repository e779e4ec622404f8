package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	qb "github.com/Keanutjardim/FRPadelLeague/internal/platform/querybuilder"
)

type DivisionRepository struct {
	db *sqlx.DB
}

func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

func (r *DivisionRepository) List(ctx context.Context) ([]division.Division, error) {
	query, args, err := qb.Select("*").
		From("divisions").
		Where(qb.IsNull("deleted_at")).
		OrderBy("code ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list divisions query: %w", err)
	}

	var rows []divisionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}

	out := make([]division.Division, 0, len(rows))
	for _, row := range rows {
		out = append(out, divisionFromRow(row))
	}
	return out, nil
}

func (r *DivisionRepository) GetByID(ctx context.Context, divisionID string) (division.Division, bool, error) {
	query, args, err := qb.Select("*").
		From("divisions").
		Where(
			qb.Eq("public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return division.Division{}, false, fmt.Errorf("build get division by id query: %w", err)
	}

	var row divisionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return division.Division{}, false, nil
		}
		return division.Division{}, false, fmt.Errorf("get division by id: %w", err)
	}

	return divisionFromRow(row), true, nil
}

func (r *DivisionRepository) GetByCode(ctx context.Context, code string) (division.Division, bool, error) {
	query, args, err := qb.Select("*").
		From("divisions").
		Where(
			qb.Eq("code", code),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return division.Division{}, false, fmt.Errorf("build get division by code query: %w", err)
	}

	var row divisionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return division.Division{}, false, nil
		}
		return division.Division{}, false, fmt.Errorf("get division by code: %w", err)
	}

	return divisionFromRow(row), true, nil
}

// SettingsRepository stores the single club-wide ladder settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (division.Settings, bool, error) {
	query, args, err := qb.Select("*").
		From("ladder_settings").
		OrderBy("id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return division.Settings{}, false, fmt.Errorf("build get ladder settings query: %w", err)
	}

	var row settingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return division.Settings{}, false, nil
		}
		return division.Settings{}, false, fmt.Errorf("get ladder settings: %w", err)
	}

	return division.Settings{
		ChallengeCutoverAt:    row.ChallengeCutoverAt,
		MaxPositionDifference: row.MaxPositionDifference,
		UpdatedAt:             row.UpdatedAt,
	}, true, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings division.Settings) error {
	const query = `
INSERT INTO ladder_settings (id, challenge_cutover_at, max_position_difference, updated_at)
VALUES (1, :challenge_cutover_at, :max_position_difference, :updated_at)
ON CONFLICT (id)
DO UPDATE SET
    challenge_cutover_at = EXCLUDED.challenge_cutover_at,
    max_position_difference = EXCLUDED.max_position_difference,
    updated_at = EXCLUDED.updated_at`

	sqlQuery, args, err := sqlx.Named(query, map[string]any{
		"challenge_cutover_at":    settings.ChallengeCutoverAt.UTC(),
		"max_position_difference": settings.MaxPositionDifference,
		"updated_at":              settings.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind upsert ladder settings query: %w", err)
	}
	sqlQuery = r.db.Rebind(sqlQuery)
	if _, err := r.db.ExecContext(ctx, sqlQuery, args...); err != nil {
		return fmt.Errorf("upsert ladder settings: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo ladder into an empty database. It is a no-op
// once any division exists, so restarting the API never duplicates rows.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM divisions WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count divisions for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, d := range memory.SeedDivisions() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO divisions (public_id, name, code)
VALUES (:public_id, :name, :code)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": d.ID,
			"name":      d.Name,
			"code":      d.Code,
		})
		if err != nil {
			return fmt.Errorf("bind seed division %s query: %w", d.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed division %s: %w", d.ID, err)
		}
	}

	settings := memory.SeedSettings()
	settingsQuery, settingsArgs, err := sqlx.Named(`
INSERT INTO ladder_settings (id, challenge_cutover_at, max_position_difference, updated_at)
VALUES (1, :challenge_cutover_at, :max_position_difference, :updated_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
		"challenge_cutover_at":    settings.ChallengeCutoverAt.UTC(),
		"max_position_difference": settings.MaxPositionDifference,
		"updated_at":              settings.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind seed ladder settings query: %w", err)
	}
	settingsQuery = tx.Rebind(settingsQuery)
	if _, err := tx.ExecContext(ctx, settingsQuery, settingsArgs...); err != nil {
		return fmt.Errorf("seed ladder settings: %w", err)
	}

	for _, u := range memory.SeedUsers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO users (public_id, name, email, gender, rating, team_public_id)
VALUES (:public_id, :name, :email, :gender, :rating, :team_public_id)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      u.ID,
			"name":           u.Name,
			"email":          u.Email,
			"gender":         string(u.Gender),
			"rating":         u.Rating,
			"team_public_id": stringToNullString(u.TeamID),
		})
		if err != nil {
			return fmt.Errorf("bind seed user %s query: %w", u.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (public_id, division_public_id, name, position, member_user_ids, created_by)
VALUES (:public_id, :division_public_id, :name, :position, :member_user_ids, :created_by)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":          t.ID,
			"division_public_id": t.DivisionID,
			"name":               t.Name,
			"position":           t.Position,
			"member_user_ids":    pq.StringArray(t.MemberIDs),
			"created_by":         t.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	qb "github.com/Keanutjardim/FRPadelLeague/internal/platform/querybuilder"
)

// activeChallengeCondition mirrors the partial unique index guarding one
// active challenge per pairing: open duels plus completed ones whose score
// still awaits validation.
const activeChallengeCondition = `(status IN ('pending', 'accepted') OR (status = 'completed' AND score_validated = FALSE))`

type ChallengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) GetByID(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select("*").From("challenges").
		Where(
			qb.Eq("public_id", challengeID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build get challenge by id query: %w", err)
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, fmt.Errorf("get challenge by id: %w", err)
	}

	return challengeFromRow(row), true, nil
}

func (r *ChallengeRepository) ListByTeam(ctx context.Context, teamID string) ([]challenge.Challenge, error) {
	query, args, err := qb.Select("*").From("challenges").
		Where(
			qb.Expr("(challenger_team_public_id = ? OR challenged_team_public_id = ?)", teamID, teamID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list challenges by team query: %w", err)
	}

	var rows []challengeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list challenges by team: %w", err)
	}

	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, challengeFromRow(row))
	}
	return out, nil
}

func (r *ChallengeRepository) ListByDivision(ctx context.Context, divisionID string) ([]challenge.Challenge, error) {
	query, args, err := qb.Select("*").From("challenges").
		Where(
			qb.Eq("division_public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list challenges by division query: %w", err)
	}

	var rows []challengeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list challenges by division: %w", err)
	}

	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, challengeFromRow(row))
	}
	return out, nil
}

func (r *ChallengeRepository) FindActiveBetween(ctx context.Context, teamA, teamB string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select("*").From("challenges").
		Where(
			qb.Expr("((challenger_team_public_id = ? AND challenged_team_public_id = ?) OR (challenger_team_public_id = ? AND challenged_team_public_id = ?))",
				teamA, teamB, teamB, teamA),
			qb.Expr(activeChallengeCondition),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build find active challenge query: %w", err)
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, fmt.Errorf("find active challenge: %w", err)
	}

	return challengeFromRow(row), true, nil
}

func (r *ChallengeRepository) Create(ctx context.Context, item challenge.Challenge) error {
	insertModel := challengeInsertModel{
		PublicID:         item.ID,
		DivisionID:       item.DivisionID,
		ChallengerTeamID: item.ChallengerTeamID,
		ChallengedTeamID: item.ChallengedTeamID,
		Status:           string(item.Status),
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("challenges", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create challenge query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "challenges_active_pairing_idx") {
			return fmt.Errorf("%w: teams %s and %s", challenge.ErrDuplicateActive, item.ChallengerTeamID, item.ChallengedTeamID)
		}
		return fmt.Errorf("create challenge: %w", err)
	}

	return nil
}

func (r *ChallengeRepository) Update(ctx context.Context, item challenge.Challenge) error {
	query, args, err := qb.Update("challenges").
		Set("status", string(item.Status)).
		Set("challenger_sets", intsToInt64Array(item.ChallengerSets)).
		Set("challenged_sets", intsToInt64Array(item.ChallengedSets)).
		Set("submitted_by_team_public_id", stringToNullString(item.SubmittedByTeamID)).
		Set("score_validated", item.ScoreValidated).
		Set("winner_team_public_id", stringToNullString(item.WinnerTeamID)).
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update challenge query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update challenge: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update challenge: not found")
	}

	return nil
}

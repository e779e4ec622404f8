package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
	qb "github.com/Keanutjardim/FRPadelLeague/internal/platform/querybuilder"
)

type JoinRequestRepository struct {
	db *sqlx.DB
}

func NewJoinRequestRepository(db *sqlx.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

func (r *JoinRequestRepository) GetByID(ctx context.Context, requestID string) (joinrequest.JoinRequest, bool, error) {
	query, args, err := qb.Select("*").From("join_requests").
		Where(
			qb.Eq("public_id", requestID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return joinrequest.JoinRequest{}, false, fmt.Errorf("build get join request by id query: %w", err)
	}

	var row joinRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return joinrequest.JoinRequest{}, false, nil
		}
		return joinrequest.JoinRequest{}, false, fmt.Errorf("get join request by id: %w", err)
	}

	return joinRequestFromRow(row), true, nil
}

func (r *JoinRequestRepository) ListByTeam(ctx context.Context, teamID string) ([]joinrequest.JoinRequest, error) {
	query, args, err := qb.Select("*").From("join_requests").
		Where(
			qb.Eq("team_public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list join requests by team query: %w", err)
	}

	var rows []joinRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list join requests by team: %w", err)
	}

	out := make([]joinrequest.JoinRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, joinRequestFromRow(row))
	}
	return out, nil
}

func (r *JoinRequestRepository) ListByUser(ctx context.Context, userID string) ([]joinrequest.JoinRequest, error) {
	query, args, err := qb.Select("*").From("join_requests").
		Where(
			qb.Eq("user_public_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list join requests by user query: %w", err)
	}

	var rows []joinRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list join requests by user: %w", err)
	}

	out := make([]joinrequest.JoinRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, joinRequestFromRow(row))
	}
	return out, nil
}

func (r *JoinRequestRepository) FindPendingByUserAndTeam(ctx context.Context, userID, teamID string) (joinrequest.JoinRequest, bool, error) {
	query, args, err := qb.Select("*").From("join_requests").
		Where(
			qb.Eq("user_public_id", userID),
			qb.Eq("team_public_id", teamID),
			qb.Eq("status", string(joinrequest.StatusPending)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return joinrequest.JoinRequest{}, false, fmt.Errorf("build find pending join request query: %w", err)
	}

	var row joinRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return joinrequest.JoinRequest{}, false, nil
		}
		return joinrequest.JoinRequest{}, false, fmt.Errorf("find pending join request: %w", err)
	}

	return joinRequestFromRow(row), true, nil
}

func (r *JoinRequestRepository) Create(ctx context.Context, item joinrequest.JoinRequest) error {
	insertModel := joinRequestInsertModel{
		PublicID:  item.ID,
		UserID:    item.UserID,
		TeamID:    item.TeamID,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("join_requests", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create join request query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "join_requests_pending_idx") {
			return fmt.Errorf("create join request: pending request already exists for user %s and team %s", item.UserID, item.TeamID)
		}
		return fmt.Errorf("create join request: %w", err)
	}

	return nil
}

func (r *JoinRequestRepository) Update(ctx context.Context, item joinrequest.JoinRequest) error {
	query, args, err := qb.Update("join_requests").
		Set("status", string(item.Status)).
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update join request query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update join request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update join request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update join request: not found")
	}

	return nil
}

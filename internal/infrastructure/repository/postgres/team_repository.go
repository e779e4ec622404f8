package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	qb "github.com/Keanutjardim/FRPadelLeague/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) ListByDivision(ctx context.Context, divisionID string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("division_public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("position ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams by division query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by division: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

// Create inserts the team at the bottom of its division ladder and stamps
// every member's user record, all in one transaction. Locking the division
// row serializes bottom-slot assignment across concurrent creations.
func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.Team{}, fmt.Errorf("begin tx create team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockDivisionQuery = `
SELECT id
FROM divisions
WHERE public_id = $1
  AND deleted_at IS NULL
FOR UPDATE`
	var divisionRowID int64
	if err := tx.GetContext(ctx, &divisionRowID, lockDivisionQuery, item.DivisionID); err != nil {
		if isNotFound(err) {
			return team.Team{}, fmt.Errorf("create team: division %s not found", item.DivisionID)
		}
		return team.Team{}, fmt.Errorf("lock division for team create: %w", err)
	}

	const bottomQuery = `
SELECT COALESCE(MAX(position), 0) + 1
FROM teams
WHERE division_public_id = $1
  AND deleted_at IS NULL`
	var bottom int
	if err := tx.GetContext(ctx, &bottom, bottomQuery, item.DivisionID); err != nil {
		return team.Team{}, fmt.Errorf("compute bottom position: %w", err)
	}
	item.Position = bottom
	item.PreviousPosition = nil

	const insertQuery = `
INSERT INTO teams (public_id, division_public_id, name, position, member_user_ids, created_by, created_at, updated_at)
VALUES (:public_id, :division_public_id, :name, :position, :member_user_ids, :created_by, :created_at, :updated_at)`
	insertSQL, insertArgs, err := sqlx.Named(insertQuery, map[string]any{
		"public_id":          item.ID,
		"division_public_id": item.DivisionID,
		"name":               item.Name,
		"position":           item.Position,
		"member_user_ids":    pq.StringArray(item.MemberIDs),
		"created_by":         item.CreatedBy,
		"created_at":         item.CreatedAt.UTC(),
		"updated_at":         item.UpdatedAt.UTC(),
	})
	if err != nil {
		return team.Team{}, fmt.Errorf("bind create team query: %w", err)
	}
	insertSQL = tx.Rebind(insertSQL)
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		if isUniqueViolation(err, "") {
			return team.Team{}, fmt.Errorf("create team: team %s already exists", item.ID)
		}
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	if len(item.MemberIDs) > 0 {
		const bindMembersQuery = `
UPDATE users
SET team_public_id = $1, updated_at = NOW()
WHERE public_id = ANY($2)
  AND deleted_at IS NULL`
		if _, err := tx.ExecContext(ctx, bindMembersQuery, item.ID, pq.Array(item.MemberIDs)); err != nil {
			return team.Team{}, fmt.Errorf("bind team members: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return team.Team{}, fmt.Errorf("commit create team tx: %w", err)
	}

	return item, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	query, args, err := qb.Update("teams").
		Set("name", item.Name).
		Set("position", item.Position).
		Set("previous_position", intPtrToNullInt64(item.PreviousPosition)).
		Set("member_user_ids", pq.StringArray(item.MemberIDs)).
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update team: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update team: not found")
	}

	return nil
}

// AddMember grows the roster by one and stamps the user's team binding in
// the same transaction. Adding someone who is already on the roster is a
// no-op, which is what lets the join-request accept path retry safely.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx add team member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockTeamQuery = `
SELECT member_user_ids
FROM teams
WHERE public_id = $1
  AND deleted_at IS NULL
FOR UPDATE`
	var members pq.StringArray
	if err := tx.GetContext(ctx, &members, lockTeamQuery, teamID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("team %s not found", teamID)
		}
		return fmt.Errorf("lock team for add member: %w", err)
	}

	for _, id := range members {
		if id == userID {
			return nil
		}
	}
	if len(members) >= team.MaxMembers {
		return fmt.Errorf("%w: team=%s", team.ErrRosterFull, teamID)
	}

	const growRosterQuery = `
UPDATE teams
SET member_user_ids = array_append(member_user_ids, $2), updated_at = NOW()
WHERE public_id = $1
  AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, growRosterQuery, teamID, userID); err != nil {
		return fmt.Errorf("add team member: %w", err)
	}

	const bindUserQuery = `
UPDATE users
SET team_public_id = $1, updated_at = NOW()
WHERE public_id = $2
  AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, bindUserQuery, teamID, userID); err != nil {
		return fmt.Errorf("bind added member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add team member tx: %w", err)
	}

	return nil
}

// ApplyPositionUpdates applies one ladder reshuffle atomically. Every
// update's expected previous position is checked against the locked live
// ladder first; any mismatch aborts the whole batch with
// team.ErrPositionConflict so the caller can replan against fresh state.
// The deferred (division, position) uniqueness constraint re-validates the
// batch at commit.
func (r *TeamRepository) ApplyPositionUpdates(ctx context.Context, divisionID string, updates []team.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply position updates: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockLadderQuery = `
SELECT public_id, position
FROM teams
WHERE division_public_id = $1
  AND deleted_at IS NULL
FOR UPDATE`
	var ladderRows []struct {
		PublicID string `db:"public_id"`
		Position int    `db:"position"`
	}
	if err := tx.SelectContext(ctx, &ladderRows, lockLadderQuery, divisionID); err != nil {
		return fmt.Errorf("lock ladder for position updates: %w", err)
	}
	live := make(map[string]int, len(ladderRows))
	for _, row := range ladderRows {
		live[row.PublicID] = row.Position
	}

	for _, update := range updates {
		position, ok := live[update.TeamID]
		if !ok {
			return fmt.Errorf("%w: team=%s division=%s", team.ErrPositionConflict, update.TeamID, divisionID)
		}
		if position != update.PreviousPosition {
			return fmt.Errorf("%w: team=%s expected position %d, found %d",
				team.ErrPositionConflict, update.TeamID, update.PreviousPosition, position)
		}
	}

	const moveQuery = `
UPDATE teams
SET position = $2, previous_position = $3, updated_at = NOW()
WHERE public_id = $1
  AND deleted_at IS NULL`
	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, moveQuery, update.TeamID, update.Position, update.PreviousPosition); err != nil {
			return fmt.Errorf("move team %s to position %d: %w", update.TeamID, update.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: concurrent reshuffle in division %s", team.ErrPositionConflict, divisionID)
		}
		return fmt.Errorf("commit position updates tx: %w", err)
	}

	return nil
}

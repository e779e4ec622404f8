package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
)

type teamTableModel struct {
	ID               int64          `db:"id"`
	PublicID         string         `db:"public_id"`
	DivisionID       string         `db:"division_public_id"`
	Name             string         `db:"name"`
	Position         int            `db:"position"`
	PreviousPosition sql.NullInt64  `db:"previous_position"`
	MemberIDs        pq.StringArray `db:"member_user_ids"`
	CreatedBy        string         `db:"created_by"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:               row.PublicID,
		DivisionID:       row.DivisionID,
		Name:             row.Name,
		Position:         row.Position,
		PreviousPosition: nullInt64ToIntPtr(row.PreviousPosition),
		MemberIDs:        append([]string(nil), row.MemberIDs...),
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

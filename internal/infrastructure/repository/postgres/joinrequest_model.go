package postgres

import (
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
)

type joinRequestTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	UserID    string     `db:"user_public_id"`
	TeamID    string     `db:"team_public_id"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type joinRequestInsertModel struct {
	PublicID  string    `db:"public_id"`
	UserID    string    `db:"user_public_id"`
	TeamID    string    `db:"team_public_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func joinRequestFromRow(row joinRequestTableModel) joinrequest.JoinRequest {
	return joinrequest.JoinRequest{
		ID:        row.PublicID,
		UserID:    row.UserID,
		TeamID:    row.TeamID,
		Status:    joinrequest.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

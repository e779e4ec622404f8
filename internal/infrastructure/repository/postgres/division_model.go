package postgres

import (
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
)

type divisionTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Name      string     `db:"name"`
	Code      string     `db:"code"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type settingsTableModel struct {
	ID                    int64     `db:"id"`
	ChallengeCutoverAt    time.Time `db:"challenge_cutover_at"`
	MaxPositionDifference int       `db:"max_position_difference"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func divisionFromRow(row divisionTableModel) division.Division {
	return division.Division{
		ID:        row.PublicID,
		Name:      row.Name,
		Code:      row.Code,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

package postgres

import (
	"database/sql"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
)

type userTableModel struct {
	ID        int64          `db:"id"`
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	Email     string         `db:"email"`
	Gender    string         `db:"gender"`
	Rating    int            `db:"rating"`
	TeamID    sql.NullString `db:"team_public_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

type userInsertModel struct {
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	Email     string         `db:"email"`
	Gender    string         `db:"gender"`
	Rating    int            `db:"rating"`
	TeamID    sql.NullString `db:"team_public_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:        row.PublicID,
		Name:      row.Name,
		Email:     row.Email,
		Gender:    user.Gender(row.Gender),
		Rating:    row.Rating,
		TeamID:    nullStringToString(row.TeamID),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

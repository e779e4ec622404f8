package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
)

type challengeTableModel struct {
	ID                int64          `db:"id"`
	PublicID          string         `db:"public_id"`
	DivisionID        string         `db:"division_public_id"`
	ChallengerTeamID  string         `db:"challenger_team_public_id"`
	ChallengedTeamID  string         `db:"challenged_team_public_id"`
	Status            string         `db:"status"`
	ChallengerSets    pq.Int64Array  `db:"challenger_sets"`
	ChallengedSets    pq.Int64Array  `db:"challenged_sets"`
	SubmittedByTeamID sql.NullString `db:"submitted_by_team_public_id"`
	ScoreValidated    bool           `db:"score_validated"`
	WinnerTeamID      sql.NullString `db:"winner_team_public_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	DeletedAt         *time.Time     `db:"deleted_at"`
}

type challengeInsertModel struct {
	PublicID         string    `db:"public_id"`
	DivisionID       string    `db:"division_public_id"`
	ChallengerTeamID string    `db:"challenger_team_public_id"`
	ChallengedTeamID string    `db:"challenged_team_public_id"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func challengeFromRow(row challengeTableModel) challenge.Challenge {
	return challenge.Challenge{
		ID:                row.PublicID,
		DivisionID:        row.DivisionID,
		ChallengerTeamID:  row.ChallengerTeamID,
		ChallengedTeamID:  row.ChallengedTeamID,
		Status:            challenge.Status(row.Status),
		ChallengerSets:    int64ArrayToInts(row.ChallengerSets),
		ChallengedSets:    int64ArrayToInts(row.ChallengedSets),
		SubmittedByTeamID: nullStringToString(row.SubmittedByTeamID),
		ScoreValidated:    row.ScoreValidated,
		WinnerTeamID:      nullStringToString(row.WinnerTeamID),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

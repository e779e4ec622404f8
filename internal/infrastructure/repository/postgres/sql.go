package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// isUniqueViolation reports whether err is a Postgres unique_violation,
// optionally narrowed to a single constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullStringToString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func stringToNullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func int64ArrayToInts(v pq.Int64Array) []int {
	if len(v) == 0 {
		return nil
	}
	out := make([]int, 0, len(v))
	for _, n := range v {
		out = append(out, int(n))
	}
	return out
}

func intsToInt64Array(v []int) pq.Int64Array {
	if len(v) == 0 {
		return nil
	}
	out := make(pq.Int64Array, 0, len(v))
	for _, n := range v {
		out = append(out, int64(n))
	}
	return out
}

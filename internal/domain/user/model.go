package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
)

// Gender decides which division a player's teams compete in.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DivisionCode maps a gender to its ladder partition.
func (g Gender) DivisionCode() (string, bool) {
	switch g {
	case GenderMale:
		return division.CodeMen, true
	case GenderFemale:
		return division.CodeWomen, true
	default:
		return "", false
	}
}

// User is a registered club player. TeamID is empty while the player is a
// free agent; membership is exclusive to one team at a time.
type User struct {
	ID        string
	Name      string
	Email     string
	Gender    Gender
	Rating    int
	TeamID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return fmt.Errorf("invalid email address: %q", u.Email)
		}
	}
	if _, ok := u.Gender.DivisionCode(); !ok {
		return fmt.Errorf("unknown gender: %q", u.Gender)
	}
	if u.Rating < 0 {
		return fmt.Errorf("rating cannot be negative")
	}

	return nil
}

// HasTeam reports whether the player is already bound to a team.
func (u User) HasTeam() bool {
	return u.TeamID != ""
}

// Principal identifies an authenticated caller after token introspection.
type Principal struct {
	UserID string
	Email  string
	Admin  bool
}

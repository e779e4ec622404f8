package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	idgen "github.com/Keanutjardim/FRPadelLeague/internal/platform/id"
)

type RegisterUserInput struct {
	// UserID carries the authenticated caller's id so the profile shares
	// the account service's id space; left empty, a fresh id is generated.
	UserID string
	Name   string
	Email  string
	Gender string
	Rating int
}

type UserService struct {
	userRepo     user.Repository
	divisionRepo division.Repository
	idGen        idgen.Generator
	now          func() time.Time
}

func NewUserService(userRepo user.Repository, divisionRepo division.Repository, idGen idgen.Generator) *UserService {
	return &UserService{
		userRepo:     userRepo,
		divisionRepo: divisionRepo,
		idGen:        idGen,
		now:          time.Now,
	}
}

// Register creates a club player. The player's gender decides which
// division their future teams compete in, so the matching division must
// already exist.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (user.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	gender := user.Gender(strings.ToLower(strings.TrimSpace(input.Gender)))

	if input.Name == "" {
		return user.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	code, ok := gender.DivisionCode()
	if !ok {
		return user.User{}, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, input.Gender)
	}
	if input.Rating < 0 {
		return user.User{}, fmt.Errorf("%w: rating cannot be negative", ErrInvalidInput)
	}

	if _, exists, err := s.divisionRepo.GetByCode(ctx, code); err != nil {
		return user.User{}, fmt.Errorf("get division by code: %w", err)
	} else if !exists {
		return user.User{}, fmt.Errorf("%w: division %q is not configured", ErrDependencyUnavailable, code)
	}

	userID := strings.TrimSpace(input.UserID)
	if userID != "" {
		if _, exists, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return user.User{}, fmt.Errorf("get user by id: %w", err)
		} else if exists {
			return user.User{}, fmt.Errorf("%w: user %s is already registered", ErrInvalidInput, userID)
		}
	} else {
		generated, err := s.idGen.NewID()
		if err != nil {
			return user.User{}, fmt.Errorf("generate user id: %w", err)
		}
		userID = generated
	}

	now := s.now().UTC()
	item := user.User{
		ID:        userID,
		Name:      input.Name,
		Email:     input.Email,
		Gender:    gender,
		Rating:    input.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.userRepo.Create(ctx, item); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return item, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (user.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	return item, nil
}

func (s *UserService) ListTeamMembers(ctx context.Context, teamID string) ([]user.User, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	members, err := s.userRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list users by team: %w", err)
	}

	return members, nil
}

// UpdateRating is an administrative correction of a player's club rating.
func (s *UserService) UpdateRating(ctx context.Context, userID string, rating int) (user.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if rating < 0 {
		return user.User{}, fmt.Errorf("%w: rating cannot be negative", ErrInvalidInput)
	}

	item, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	item.Rating = rating
	item.UpdatedAt = s.now().UTC()
	if err := s.userRepo.Update(ctx, item); err != nil {
		return user.User{}, fmt.Errorf("update user rating: %w", err)
	}

	return item, nil
}

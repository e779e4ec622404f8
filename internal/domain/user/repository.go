package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]User, error)
	Create(ctx context.Context, item User) error
	Update(ctx context.Context, item User) error
}

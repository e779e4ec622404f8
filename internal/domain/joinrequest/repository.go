package joinrequest

import "context"

// Repository describes join request persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, requestID string) (JoinRequest, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]JoinRequest, error)
	ListByUser(ctx context.Context, userID string) ([]JoinRequest, error)
	FindPendingByUserAndTeam(ctx context.Context, userID, teamID string) (JoinRequest, bool, error)
	Create(ctx context.Context, item JoinRequest) error
	Update(ctx context.Context, item JoinRequest) error
}

package users

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByWallet(ctx context.Context, wallet string) (User, error)
	Update(ctx context.Context, u User) error
}

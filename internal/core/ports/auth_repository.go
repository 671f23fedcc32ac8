package ports

import (
	"context"

	"github.com/foundly/admin-backend/internal/core/domain"
)

// AuthRepository defines the interface for credential persistence.
type AuthRepository interface {
	// Create inserts a new user; a duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns all users ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes a user; domain.ErrUserNotFound when the id is unknown.
	Delete(ctx context.Context, id string) error
}

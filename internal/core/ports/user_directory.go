package ports

import (
	"context"
	"time"

	"github.com/foundly/admin-backend/internal/core/domain"
)

// DirectoryUser is one end user of the consumer platform as reported by the
// authentication provider.
type DirectoryUser struct {
	UID       string
	Email     string
	CreatedAt time.Time
}

// UserDirectory lists the platform's end users. The provider's API is
// cursor-based, so listing is strictly sequential: pass the returned token
// forward until it comes back empty.
type UserDirectory interface {
	ListUsers(ctx context.Context, env domain.Environment, pageSize int, pageToken string) ([]DirectoryUser, string, error)
}

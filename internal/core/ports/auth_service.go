package ports

import (
	"context"
	"time"
)

// UserSummary is the public projection of a credential record.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResult carries both tokens; the handler decides transport (body for
// the access token, cookie for the refresh token).
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         UserSummary
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Refresh re-validates the subject against the credential store and
	// issues a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Register(ctx context.Context, in RegisterInput) (*UserSummary, error)
	Users(ctx context.Context) ([]UserSummary, error)
	// DeleteUser is restricted to super admins; a missing target id is
	// reported as unauthorized, not as not-found.
	DeleteUser(ctx context.Context, id, requestingRole string) error
	// EnsureSuperAdmin creates the bootstrap super admin when absent.
	EnsureSuperAdmin(ctx context.Context, email, password string) error
}

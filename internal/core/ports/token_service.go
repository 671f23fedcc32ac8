package ports

import "github.com/foundly/admin-backend/internal/core/domain"

// TokenClaims is the verified claim set carried by both token kinds.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

// TokenService issues and verifies the two JWT kinds. Access tokens are
// short-lived bearer credentials; refresh tokens are signed with a separate
// secret and live only in an httpOnly cookie. There is no revocation list —
// compromise is bounded by token lifetime.
type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	// VerifyRefreshToken returns the claims, or domain.ErrInvalidToken on a
	// bad signature, wrong algorithm, or expiry.
	VerifyRefreshToken(token string) (*TokenClaims, error)
}

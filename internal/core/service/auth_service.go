package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/ports"
)

// AuthService implements login, token refresh, and user administration over
// the credential store.
type AuthService struct {
	repo   ports.AuthRepository
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Login verifies the password hash and issues both tokens. Unknown email
// and wrong password produce the same error on purpose.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Str("role", user.Role).Msg("login succeeded")

	return &ports.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         summarize(user),
	}, nil
}

// Refresh rotates an access token. The subject must still exist in the
// credential store; a deleted operator cannot mint new access tokens even
// with a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}

	return s.tokens.IssueAccessToken(user)
}

// Register creates a new dashboard user. The route is bearer-gated; only
// an already-authenticated operator reaches this.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.UserSummary, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", created.Email).Str("role", created.Role).Msg("user registered")

	summary := summarize(created)
	return &summary, nil
}

func (s *AuthService) Users(ctx context.Context) ([]ports.UserSummary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ports.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarize(u))
	}
	return out, nil
}

// DeleteUser removes a credential record. Only super admins may delete,
// and a missing target id is collapsed into the same unauthorized error so
// the response does not reveal which ids exist.
func (s *AuthService) DeleteUser(ctx context.Context, id, requestingRole string) error {
	if requestingRole != domain.RoleSuperAdmin {
		return domain.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthorized
		}
		return err
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// EnsureSuperAdmin seeds the bootstrap super admin on startup. A no-op when
// the email is already registered.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Name:         "Bootstrap Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
	}); err != nil {
		return err
	}

	s.log.Info().Str("email", email).Msg("bootstrap super admin created")
	return nil
}

func summarize(u *domain.User) ports.UserSummary {
	return ports.UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

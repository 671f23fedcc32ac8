package service

import (
	"errors"
	"testing"
	"time"

	"github.com/foundly/admin-backend/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  domain.RoleAdmin,
	}
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := NewTokenService("access", "refresh", time.Hour, 24*time.Hour)

	token, err := svc.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	claims, err := svc.VerifyRefreshToken(token)
	if err != nil {
		t.Fatalf("verify refresh token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_AccessTokenRejectedAsRefresh(t *testing.T) {
	svc := NewTokenService("access", "refresh", time.Hour, 24*time.Hour)

	// Signed with the access secret, so the refresh verifier must reject it.
	token, err := svc.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	if _, err := svc.VerifyRefreshToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_ExpiredRefreshToken(t *testing.T) {
	issuer := NewTokenService("access", "refresh", time.Hour, 1)
	verifier := NewTokenService("access", "refresh", time.Hour, 24*time.Hour)

	token, err := issuer.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := verifier.VerifyRefreshToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := NewTokenService("access", "refresh", time.Hour, 24*time.Hour)

	if _, err := svc.VerifyRefreshToken("garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_DefaultTTLs(t *testing.T) {
	svc := NewTokenService("access", "refresh", 0, 0)
	if svc.RefreshTTL() != 7*24*time.Hour {
		t.Fatalf("expected default refresh TTL of 168h, got %v", svc.RefreshTTL())
	}
}

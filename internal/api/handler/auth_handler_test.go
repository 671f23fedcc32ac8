package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/ports"
)

type stubAuthService struct {
	loginResult *ports.LoginResult
	loginErr    error
	refreshed   string
	refreshErr  error
	deletedID   string
	deletedRole string
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return s.refreshed, nil
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (*ports.UserSummary, error) {
	return &ports.UserSummary{ID: "new-id", Email: in.Email, Role: domain.RoleUser}, nil
}

func (s *stubAuthService) Users(_ context.Context) ([]ports.UserSummary, error) {
	return []ports.UserSummary{}, nil
}

func (s *stubAuthService) DeleteUser(_ context.Context, id, requestingRole string) error {
	s.deletedID = id
	s.deletedRole = requestingRole
	return nil
}

func (s *stubAuthService) EnsureSuperAdmin(_ context.Context, email, password string) error {
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_SetsRefreshCookie(t *testing.T) {
	svc := &stubAuthService{loginResult: &ports.LoginResult{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         ports.UserSummary{ID: "u1", Email: "alice@example.com", Role: domain.RoleAdmin},
	}}
	h := NewAuthHandler(svc, false, 24*time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"pass1234"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("login handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access-token") {
		t.Fatalf("access token missing from body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "refresh-token") {
		t.Fatalf("refresh token must not appear in the body")
	}

	cookies := rec.Result().Cookies()
	var refresh *http.Cookie
	for _, ck := range cookies {
		if ck.Name == refreshCookieName {
			refresh = ck
		}
	}
	if refresh == nil {
		t.Fatalf("refresh cookie not set")
	}
	if refresh.Value != "refresh-token" {
		t.Fatalf("unexpected cookie value: %q", refresh.Value)
	}
	if !refresh.HttpOnly {
		t.Fatalf("refresh cookie must be httpOnly")
	}
	if refresh.Path != refreshCookiePath {
		t.Fatalf("expected cookie path %q, got %q", refreshCookiePath, refresh.Path)
	}
	if refresh.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite strict, got %v", refresh.SameSite)
	}
	if refresh.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("expected MaxAge %d, got %d", int((24*time.Hour).Seconds()), refresh.MaxAge)
	}
}

func TestAuthHandler_Login_RejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{refreshed: "new-access"}, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "new-access") {
		t.Fatalf("new access token missing: %s", rec.Body.String())
	}
}

func TestAuthHandler_Logout_ExpiresCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != refreshCookieName {
		t.Fatalf("expected cleared refresh cookie, got %v", cookies)
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("expected negative MaxAge, got %d", cookies[0].MaxAge)
	}
}

func TestAuthHandler_DeleteUser_PassesRoleThrough(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodDelete, "/auth/users/u42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("u42")
	c.Set("role", domain.RoleSuperAdmin)
	c.Set("email", "root@example.com")

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("delete handler error: %v", err)
	}
	if svc.deletedID != "u42" || svc.deletedRole != domain.RoleSuperAdmin {
		t.Fatalf("unexpected service call: id=%q role=%q", svc.deletedID, svc.deletedRole)
	}
}

func TestAuthHandler_DeleteUser_MissingClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodDelete, "/auth/users/u42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.DeleteUser(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

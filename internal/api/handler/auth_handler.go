package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/foundly/admin-backend/internal/api/metrics"
	"github.com/foundly/admin-backend/internal/core/ports"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/auth/refresh"
)

// AuthHandler serves the /auth surface: credential login, token refresh via
// httpOnly cookie, admin provisioning, and user management.
type AuthHandler struct {
	service       ports.AuthService
	secureCookies bool
	refreshTTL    time.Duration
}

func NewAuthHandler(service ports.AuthService, secureCookies bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:       service,
		secureCookies: secureCookies,
		refreshTTL:    refreshTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string            `json:"accessToken"`
	User        ports.UserSummary `json:"user"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin super_admin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login godoc
// @Summary      Authenticate an admin user
// @Description  Verifies credentials, returns a short-lived access token in the body and sets the refresh token as an httpOnly cookie scoped to /auth/refresh.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      loginRequest  true  "Login credentials"
// @Success      200          {object}  loginResponse
// @Failure      401          {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	h.setRefreshCookie(c, result.RefreshToken)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Refresh godoc
// @Summary      Exchange the refresh cookie for a new access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "no refresh token provided")
	}

	accessToken, err := h.service.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, map[string]string{"accessToken": accessToken})
}

// Logout godoc
// @Summary      Clear the refresh cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Register godoc
// @Summary      Create a new admin user
// @Description  Requires an authenticated caller. Role defaults to "user" when omitted.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      registerRequest  true  "New user"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "user created",
		"user":    user,
	})
}

// Users godoc
// @Summary      List all admin users
// @Tags         auth
// @Produce      json
// @Success      200  {array}  ports.UserSummary
// @Security     BearerAuth
// @Router       /auth/users [get]
func (h *AuthHandler) Users(c echo.Context) error {
	users, err := h.service.Users(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser godoc
// @Summary      Delete an admin user
// @Description  Restricted to super admins. A missing target reports unauthorized.
// @Tags         auth
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	_, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id"), role); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.refreshTTL.Seconds()),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/foundly/admin-backend/internal/core/domain"
)

// ctxIdentity extracts the claims injected by the Auth middleware and
// fast-fails before any service call: a non-empty role proves the
// middleware ran.
func ctxIdentity(c echo.Context) (email, role string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ = c.Get("email").(string)
	return email, role, nil
}

// ctxEnvironment resolves the dataset selection once per request; every
// downstream store call receives it explicitly.
func ctxEnvironment(c echo.Context) domain.Environment {
	return domain.ParseEnvironment(c.QueryParam("environment"))
}

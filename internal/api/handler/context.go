package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackbase/identity-api/internal/api/middleware"
	"github.com/stackbase/identity-api/internal/core/domain"
)

// ctxPrincipal extracts the Principal attached by the Authenticate
// middleware and fast-fails before any service call. A missing principal
// means the route was registered without the middleware — reject with 401,
// never treat it as an anonymous grant.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil || p.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

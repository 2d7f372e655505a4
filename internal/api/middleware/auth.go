package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackbase/identity-api/internal/api/metrics"
	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/session"
)

// principalKey is the echo context key the resolved Principal is stored
// under for the lifetime of one request.
const principalKey = "principal"

// Authenticate resolves the bearer token and attaches the Principal to the
// request context. A request without a valid principal is rejected with 401
// here, before any guard or protected handler runs.
func Authenticate(resolver *session.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := resolver.Resolve(c.Request().Header.Get("Authorization"))
			if p == nil {
				metrics.SessionResolutionsTotal.WithLabelValues("rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			metrics.SessionResolutionsTotal.WithLabelValues("ok").Inc()
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// Principal returns the Principal attached by Authenticate, or nil when the
// middleware did not run for this request.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

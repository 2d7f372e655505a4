package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stackbase/identity-api/internal/api/metrics"
	"github.com/stackbase/identity-api/internal/core/guard"
)

// tenantParam is the route parameter carrying the requested tenant id.
const tenantParam = "tenant_id"

// Guards adapts an ordered guard chain to echo middleware. The chain is
// composed once at route registration; per request it sees a snapshot of
// the principal and the requested tenant and the first rejection wins.
// Unauthenticated maps to 401 and forbidden to 403, never collapsed.
func Guards(guards ...guard.Guard) echo.MiddlewareFunc {
	chain := guard.Compose(guards...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := chain(guard.Request{
				Principal:   Principal(c),
				TenantParam: c.Param(tenantParam),
				TenantBody:  tenantFromBody(c),
			})

			switch res.Status {
			case guard.StatusUnauthenticated:
				metrics.GuardRejectionsTotal.WithLabelValues("unauthenticated", res.Reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			case guard.StatusForbidden:
				metrics.GuardRejectionsTotal.WithLabelValues("forbidden", res.Reason).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			return next(c)
		}
	}
}

// tenantFromBody peeks at a JSON body for a tenant_id field, restoring the
// body so the handler can still bind it. Anything unparseable is simply no
// tenant; the guard decides what that means.
func tenantFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return ""
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		// A partial read must not leave truncated bytes behind for the
		// handler's bind to parse.
		req.Body = io.NopCloser(bytes.NewReader(nil))
		return ""
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}

	var payload struct {
		TenantID string `json:"tenant_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.TenantID
}

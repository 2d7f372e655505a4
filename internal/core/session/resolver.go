// Package session turns an inbound Authorization header into a Principal.
package session

import (
	"strings"

	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/token"
)

// Verifier is the token verification capability the resolver delegates to.
type Verifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Resolver extracts a bearer token from a header value and maps its claims
// to a Principal. It performs no I/O beyond the verification call and
// writes no state on failure paths.
type Resolver struct {
	verifier Verifier
}

func NewResolver(verifier Verifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve returns the Principal carried by headerValue, or nil when the
// header is absent, uses a non-bearer scheme, carries an empty token, or
// fails verification. It never returns an error: every failure mode is the
// same nil result.
func (r *Resolver) Resolve(headerValue string) *domain.Principal {
	if headerValue == "" {
		return nil
	}

	parts := strings.SplitN(headerValue, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return nil
	}

	claims, err := r.verifier.Verify(raw)
	if err != nil {
		return nil
	}

	return &domain.Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Roles:    claims.Roles,
		TenantID: claims.TenantID,
	}
}

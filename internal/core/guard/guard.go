// Package guard implements the authorization predicates evaluated after the
// session resolver has attached a Principal. Guards are pure: they read the
// request snapshot and yield a tagged result, and composition is an ordered
// list that stops at the first rejection. The unauthenticated and forbidden
// outcomes stay distinct all the way to the HTTP boundary.
package guard

import "github.com/stackbase/identity-api/internal/core/domain"

// Status tags a guard evaluation outcome.
type Status int

const (
	StatusPassed Status = iota
	StatusUnauthenticated
	StatusForbidden
)

// Result is the outcome of one guard (or a composed chain). Reason is a
// short machine-friendly tag for logs and metrics, not a user message.
type Result struct {
	Status Status
	Reason string
}

// Passed is the zero-reason success result.
func Passed() Result { return Result{Status: StatusPassed} }

// Request is the immutable snapshot a guard evaluates against. TenantParam
// carries the tenant id from the route parameters, TenantBody the one from
// the request body; the parameter wins when both are present.
type Request struct {
	Principal   *domain.Principal
	TenantParam string
	TenantBody  string
}

// RequestedTenant returns the tenant id the request targets, applying the
// parameter-over-body precedence.
func (r Request) RequestedTenant() string {
	if r.TenantParam != "" {
		return r.TenantParam
	}
	return r.TenantBody
}

// Guard is a pure predicate over a request snapshot.
type Guard func(Request) Result

// RequireAnyRole passes when the principal's role set intersects allowed.
// A missing principal is unauthenticated, not forbidden: the resolver should
// have rejected the request already, but the check is repeated here so a
// miswired route can never turn into a privilege grant.
func RequireAnyRole(allowed ...string) Guard {
	return func(r Request) Result {
		if r.Principal == nil {
			return Result{Status: StatusUnauthenticated, Reason: "no_principal"}
		}
		if !r.Principal.HasAnyRole(allowed...) {
			return Result{Status: StatusForbidden, Reason: "role_mismatch"}
		}
		return Passed()
	}
}

// RequireTenantMatch passes when the principal is scoped to the tenant the
// request targets. A principal without a tenant never matches anything.
func RequireTenantMatch() Guard {
	return func(r Request) Result {
		if r.Principal == nil {
			return Result{Status: StatusUnauthenticated, Reason: "no_principal"}
		}
		requested := r.RequestedTenant()
		if requested == "" || r.Principal.TenantID == "" || r.Principal.TenantID != requested {
			return Result{Status: StatusForbidden, Reason: "tenant_mismatch"}
		}
		return Passed()
	}
}

// Compose evaluates guards strictly in the order given and returns the
// first rejection; later guards are not evaluated once one rejects.
func Compose(guards ...Guard) Guard {
	return func(r Request) Result {
		for _, g := range guards {
			if res := g(r); res.Status != StatusPassed {
				return res
			}
		}
		return Passed()
	}
}

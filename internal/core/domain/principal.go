package domain

// Principal is the authenticated identity attached to a single request after
// successful token verification. It lives for one request only and is
// rebuilt from the token every time, never cached server-side.
type Principal struct {
	UserID   string
	Email    string
	Roles    []string
	TenantID string
}

// HasAnyRole reports whether the principal's role set intersects allowed.
// An empty role set grants nothing.
func (p *Principal) HasAnyRole(allowed ...string) bool {
	for _, have := range p.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

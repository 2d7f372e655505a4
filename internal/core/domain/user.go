package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// ValidRole reports whether r is one of the known role tags.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// DefaultRoles is the role list assigned to freshly signed-up users.
func DefaultRoles() []string {
	return []string{RoleUser}
}

// User models a persisted account. PasswordHash and RefreshToken are never
// serialized outward.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Roles        []string   `json:"roles"`
	TenantID     string     `json:"tenant_id,omitempty"`
	RefreshToken string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasAnyRole reports whether the user's role list intersects allowed.
func (u *User) HasAnyRole(allowed ...string) bool {
	for _, have := range u.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

package ports

import (
	"context"

	"github.com/stackbase/identity-api/internal/core/domain"
)

// SignupInput carries everything needed to create an account. Role
// assignment is not part of signup: new accounts always get the default
// role list.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	TenantID  string
}

type AuthService interface {
	// Signup creates an inactive account with a hashed password.
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

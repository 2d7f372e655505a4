package ports

import (
	"context"

	"github.com/stackbase/identity-api/internal/core/domain"
)

// UpdateProfileInput lists the mutable profile fields. Nil pointers mean
// "leave untouched". The password is absent: it only changes through
// ChangePassword, which is the single rehash path.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// AdminUpdateInput extends profile updates with the fields only an
// administrator may touch.
type AdminUpdateInput struct {
	UpdateProfileInput
	Roles    []string
	IsActive *bool
	TenantID *string
}

type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*domain.User, error)
	AdminUpdate(ctx context.Context, id string, input AdminUpdateInput) (*domain.User, error)
	// ChangePassword verifies the current password before rehashing the new
	// one exactly once.
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

package ports

import (
	"context"

	"github.com/stackbase/identity-api/internal/core/domain"
)

// UserRepository is the credential-store collaborator. Implementations own
// their transactions, pooling, and retries; callers treat failures beyond
// the domain sentinels as opaque and do not retry.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

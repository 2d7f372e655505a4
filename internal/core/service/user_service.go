package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/hash"
	"github.com/stackbase/identity-api/internal/core/ports"
)

// UserService implements profile and account lifecycle operations.
type UserService struct {
	repo   ports.UserRepository
	hasher *hash.Hasher
	mail   MailDispatcher // optional
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher *hash.Hasher, mail MailDispatcher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, mail: mail, log: log}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the given field changes. The password hash is
// carried over untouched: profile updates never rehash.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input ports.UpdateProfileInput) (*domain.User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := buildUserUpdate(current, input)
	return s.repo.Update(ctx, id, updated)
}

// AdminUpdate additionally allows changing roles, tenant, and active state.
func (s *UserService) AdminUpdate(ctx context.Context, id string, input ports.AdminUpdateInput) (*domain.User, error) {
	for _, r := range input.Roles {
		if !domain.ValidRole(r) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidCredentials, r)
		}
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := buildUserUpdate(current, input.UpdateProfileInput)
	if input.Roles != nil {
		updated.Roles = input.Roles
	}
	if input.IsActive != nil {
		updated.IsActive = *input.IsActive
	}
	if input.TenantID != nil {
		updated.TenantID = *input.TenantID
	}
	return s.repo.Update(ctx, id, updated)
}

// ChangePassword verifies the current password, then rehashes the new one
// exactly once before persisting. This is the only mutation path that
// touches the stored hash.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("password verification failed")
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("password hashing failed")
		return fmt.Errorf("change password: %w", err)
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Update(ctx, id, user); err != nil {
		return err
	}

	if s.mail != nil {
		s.mail.Enqueue(ports.MailMessage{
			To:       user.Email,
			Subject:  "Your password was changed",
			Template: "password_changed",
		})
	}

	s.log.Info().Str("user_id", id).Msg("password changed")
	return nil
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, id, user)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// buildUserUpdate merges the requested field changes into a copy of the
// current record. It is the explicit replacement for ORM pre-save hooks:
// because the password is not among the inputs, the stored hash can never
// be rehashed or clobbered by a profile mutation.
func buildUserUpdate(current *domain.User, input ports.UpdateProfileInput) *domain.User {
	updated := *current
	if input.Email != nil {
		updated.Email = *input.Email
	}
	if input.FirstName != nil {
		updated.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		updated.LastName = *input.LastName
	}
	updated.UpdatedAt = time.Now().UTC()
	return &updated
}

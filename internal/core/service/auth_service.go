package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stackbase/identity-api/internal/api/metrics"
	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/hash"
	"github.com/stackbase/identity-api/internal/core/ports"
	"github.com/stackbase/identity-api/internal/core/token"
)

// MailDispatcher enqueues mail for asynchronous delivery. Enqueueing never
// fails; delivery problems surface in the dispatcher's own logs.
type MailDispatcher interface {
	Enqueue(msg ports.MailMessage)
}

// AuthService implements signup and login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   *hash.Hasher
	tokens   *token.Service
	throttle ports.LoginThrottle // optional
	mail     MailDispatcher      // optional
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	hasher *hash.Hasher,
	tokens *token.Service,
	throttle ports.LoginThrottle,
	mail MailDispatcher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		mail:     mail,
		log:      log,
	}
}

// Signup creates an inactive account with the default role list. The
// password is hashed exactly once, before the first persist.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed during signup")
		return nil, fmt.Errorf("signup: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: passwordHash,
		IsActive:     false,
		Roles:        domain.DefaultRoles(),
		TenantID:     input.TenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.SignupsTotal.Inc()
	if s.mail != nil {
		s.mail.Enqueue(ports.MailMessage{
			To:       created.Email,
			Subject:  "Welcome",
			Template: "welcome",
		})
	}

	s.log.Info().Str("user_id", created.ID).Msg("user signed up")
	return created, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	if !s.loginAllowed(ctx, email) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// Internal hashing failure: surfaces generically, never as a
		// wrong password.
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password verification failed")
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	// Best-effort bookkeeping: a failed stamp must not undo a successful
	// authentication.
	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.RefreshToken = uuid.NewString()
	if updated, err := s.repo.Update(ctx, user.ID, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to stamp login")
	} else {
		user = updated
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return signed, user, nil
}

// loginAllowed consults the throttle, failing open when it is absent or its
// backing store is unreachable.
func (s *AuthService) loginAllowed(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return true
	}
	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		return true
	}
	return allowed
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

// Package token issues and verifies the compact signed tokens that carry a
// user's identity between requests. Tokens are HS256 JWTs with a fixed
// validity window; there is no refresh or rotation mode.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/stackbase/identity-api/internal/core/domain"
)

const DefaultTTL = 24 * time.Hour

// Claims is the only supported claim shape. Roles and TenantID are optional.
type Claims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a server-held secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

// NewService returns a token Service. A non-positive ttl falls back to
// DefaultTTL.
func NewService(secret string, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl, log: log}
}

// Issue signs a token for the given user, expiring after the fixed TTL.
func (s *Service) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Roles:    user.Roles,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiration and returns the embedded claims.
// Every failure surfaces as domain.ErrTokenInvalid so callers cannot tell
// a malformed token from an expired or forged one; the specific reason is
// only recorded in the debug log.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

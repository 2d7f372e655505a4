// Package hash provides the one-way password hashing capability used by the
// user lifecycle and the login flow. It is backed by bcrypt, which embeds a
// random salt and the cost factor in every digest, so both operations are
// safe to call from concurrent requests with no shared state.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashError reports an internal hashing failure (malformed digest, cost out
// of range). It is distinct from a plain "no match" result: callers must
// treat it as an internal error, never as a wrong password.
type HashError struct {
	Op  string
	Err error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash: %s: %v", e.Op, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// Hasher hashes and verifies passwords.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost.
// Costs outside bcrypt's valid range fall back to the default cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted digest of plaintext. Two calls with the same
// plaintext yield different digests.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", &HashError{Op: "generate", Err: err}
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch returns
// (false, nil); any other bcrypt failure returns a *HashError so internal
// problems are never silently reported as a wrong password.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &HashError{Op: "compare", Err: err}
	}
}

package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// logins so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")

	// ErrTokenInvalid is the uniform verification failure: malformed,
	// expired, and bad-signature tokens are indistinguishable to callers.
	ErrTokenInvalid = errors.New("invalid token")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")

	ErrTooManyAttempts = errors.New("too many login attempts")
)

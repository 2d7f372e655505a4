package ports

import "context"

// LoginThrottle limits repeated failed logins per email. Implementations
// should fail open: an unreachable backing store must not lock users out.
type LoginThrottle interface {
	// Allow reports whether another attempt for email is permitted.
	Allow(ctx context.Context, email string) (bool, error)
	// RecordFailure counts one failed attempt for email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, email string) error
}

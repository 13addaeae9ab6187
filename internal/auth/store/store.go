package store

import (
	"context"
	"errors"
	"time"

	"github.com/slavborworld/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface over the user database. Concrete
// drivers (sqlite today) implement it.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases the underlying connection.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByEmail resolves the login identity and bearer-token subjects.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByID resolves the subject of a temp (2FA challenge) token.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// CreateUser inserts a new user and returns it with the assigned id.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// ListUsers returns users ordered by id, for the admin listing.
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error)

	// UpdateLastLogin stamps a successful authentication.
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error

	// SetOTPSecret stores a freshly generated TOTP secret. The user is now
	// mid-setup; 2FA is not enabled until EnableTwoFactor.
	SetOTPSecret(ctx context.Context, userID int64, secret string) error

	// EnableTwoFactor marks 2FA confirmed and stamps last_login in the same
	// update (first successful code submission completes the login).
	EnableTwoFactor(ctx context.Context, userID int64, at time.Time) error
}

// Blacklist marks individual tokens as revoked until their natural expiry.
// Entries self-expire; there is no sweep. Drivers must be safe for
// concurrent use.
type Blacklist interface {
	// Revoke stores the token with a TTL equal to its remaining lifetime.
	// Returns false without writing when expiresAt has already passed —
	// an expired token needs no revocation. Idempotent.
	Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether the token has been revoked and not yet
	// reached its natural expiry.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

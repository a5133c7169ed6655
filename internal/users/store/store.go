package store

import (
	"context"
	"errors"

	"github.com/chirpnet/chirp/internal/users/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and to stop callers from accidentally nesting
// transactions.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Follows() Follows

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and the forgot-password flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername backs the public profile route.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Email and username collisions surface as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile applies the patch fields that are set and bumps
	// updated_at. A username collision surfaces as ErrAlreadyExists.
	UpdateProfile(ctx context.Context, userID string, p domain.UserPatch) error

	// SetEmailVerifyToken stores the latest issued verification token.
	SetEmailVerifyToken(ctx context.Context, userID, token string) error

	// MarkEmailVerified flips the user to verified and clears the
	// verification token.
	MarkEmailVerified(ctx context.Context, userID string) error

	// SetForgotPasswordToken stores the latest issued reset token.
	SetForgotPasswordToken(ctx context.Context, userID, token string) error

	// UpdatePasswordHash sets the password_hash (argon2), clears the
	// forgot-password token, and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser cascades to refresh_tokens and follows (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the row by fingerprint. Deleting an
	// already-gone token is not an error.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteAllUserRefreshTokens bulk revocation (e.g. password reset).
	DeleteAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is periodic housekeeping. Returns the
	// number of rows purged.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type Follows interface {
	// CreateFollow inserts a follow edge. A duplicate pair surfaces as
	// ErrAlreadyExists.
	CreateFollow(ctx context.Context, f domain.Follow) error

	// GetFollow returns the edge, or ErrNotFound.
	GetFollow(ctx context.Context, followerID, followeeID string) (domain.Follow, error)

	// DeleteFollow removes the edge, ErrNotFound when absent so callers
	// can distinguish the idempotent case.
	DeleteFollow(ctx context.Context, followerID, followeeID string) error

	// CountFollowers counts edges pointing at the user.
	CountFollowers(ctx context.Context, userID string) (int64, error)

	// CountFollowing counts edges originating from the user.
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

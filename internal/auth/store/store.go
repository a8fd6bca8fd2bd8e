package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a transaction-scoped Store
// has exactly the same surface as the root one.
type Store interface {
	Tokens() Tokens
	RefreshTokens() RefreshTokens
	Tenants() Tenants

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
// Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tokens interface {
	// Put inserts a new access token. A duplicate id fails with ErrAlreadyExists.
	Put(ctx context.Context, t domain.Token) error

	// Get returns the token with id if it has not expired at now. Expired rows
	// that have not been swept yet are reported as ErrNotFound.
	Get(ctx context.Context, id string, now time.Time) (domain.Token, error)

	// Delete removes the token, ErrNotFound if there was nothing to remove.
	// Refresh tokens are never touched.
	Delete(ctx context.Context, id string) error

	// DeleteExpired physically removes tokens with expires_at <= now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	// Replace stores rt as the single refresh token for (rt.AuthID,
	// rt.ClientID) and returns the record it displaced, or nil. It is atomic
	// with respect to concurrent calls for the same pair; called on a root
	// Store it opens its own transaction.
	Replace(ctx context.Context, rt domain.RefreshToken) (*domain.RefreshToken, error)

	// Get looks a refresh token up by its fingerprint.
	Get(ctx context.Context, tokenHash string) (domain.RefreshToken, error)

	// ListByAuthID returns the principal's refresh tokens, newest first.
	ListByAuthID(ctx context.Context, authID string) ([]domain.RefreshToken, error)

	// Delete revokes the refresh token of (authID, clientID).
	Delete(ctx context.Context, authID, clientID string) error

	// DeleteCreatedBefore applies a retention policy and returns how many
	// records were removed.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Tenants interface {
	// List returns every tenant node.
	List(ctx context.Context) ([]domain.Tenant, error)

	// Upsert inserts or updates a tenant node.
	Upsert(ctx context.Context, t domain.Tenant) error
}

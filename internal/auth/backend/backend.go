// Package backend defines the identity-verification capability the token
// coordinator depends on, a registry of named implementations and a gateway
// that bounds every call in time.
package backend

import (
	"context"
	"errors"
)

var (
	// ErrAuthenticationFailed covers wrong credentials and unknown principals.
	// Callers must not learn which of the two it was.
	ErrAuthenticationFailed = errors.New("backend: authentication failed")

	// ErrUnknownBackend is returned by the registry for an unregistered name.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrUnreachable marks transport-level failures reaching a remote
	// directory. Only these are retried by the Gateway.
	ErrUnreachable = errors.New("backend: unreachable")

	// ErrUnavailable is returned by the Gateway when the backend timed out or
	// kept failing.
	ErrUnavailable = errors.New("backend: unavailable")
)

// Credentials are the raw secrets presented by the caller.
type Credentials struct {
	Login    string
	Password string
}

// Principal is the set of facts a backend reports about an authenticated
// identity.
type Principal struct {
	AuthID     string
	UserUUID   string
	TenantUUID string
	ACLs       []string
	Metadata   map[string]any
}

// Backend verifies an identity and returns its principal facts.
type Backend interface {
	// Name is the identifier clients put in the "backend" request field.
	Name() string

	// Authenticate verifies credentials. It returns ErrAuthenticationFailed
	// for bad credentials.
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)

	// Principal re-derives the facts for an already authenticated identity,
	// used when a refresh token is exchanged. It returns
	// ErrAuthenticationFailed if the identity no longer exists.
	Principal(ctx context.Context, authID string) (Principal, error)
}

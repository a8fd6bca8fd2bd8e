// Package assertion implements a backend that accepts signed JWT assertions
// issued by an upstream identity provider. The Basic-auth login is the
// expected subject and the password is the assertion itself.
package assertion

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
)

// Name is the backend identifier used in token requests.
const Name = "assertion"

// Config describes the trusted provider.
type Config struct {
	Issuer   string            `yaml:"issuer"`
	Audience []string          `yaml:"audience"`
	Leeway   time.Duration     `yaml:"leeway"`
	Keys     map[string]string `yaml:"keys"` // kid -> PEM file
}

// Backend verifies assertions and remembers the facts of the last accepted
// assertion per auth id, which is what Principal reports on refresh.
type Backend struct {
	verifier *jwtx.Verifier

	mu    sync.RWMutex
	known map[string]backend.Principal
}

// New loads the configured public keys.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Keys) == 0 {
		return nil, fmt.Errorf("assertion: at least one key is required")
	}

	keys := jwtx.NewKeySet()
	for kid, path := range cfg.Keys {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("assertion: read key %q: %w", kid, err)
		}
		if err := keys.AddPEM(kid, data); err != nil {
			return nil, fmt.Errorf("assertion: %w", err)
		}
	}

	return NewWithKeys(keys, jwtx.VerifyOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		Leeway:   cfg.Leeway,
	}), nil
}

// NewWithKeys builds a backend around an already populated KeySet.
func NewWithKeys(keys *jwtx.KeySet, opts jwtx.VerifyOptions) *Backend {
	return &Backend{
		verifier: jwtx.NewVerifier(keys, opts),
		known:    make(map[string]backend.Principal),
	}
}

// SetClock overrides the clock used for exp/nbf checks.
func (b *Backend) SetClock(now func() time.Time) {
	b.verifier.Now = now
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Authenticate(ctx context.Context, creds backend.Credentials) (backend.Principal, error) {
	claims, err := b.verifier.Verify(creds.Password)
	if err != nil {
		return backend.Principal{}, fmt.Errorf("%w: %w", backend.ErrAuthenticationFailed, err)
	}
	if claims.Subject != creds.Login {
		return backend.Principal{}, fmt.Errorf("%w: subject does not match login", backend.ErrAuthenticationFailed)
	}

	p := backend.Principal{
		AuthID:     claims.Subject,
		UserUUID:   claims.UserUUID,
		TenantUUID: claims.TenantUUID,
		ACLs:       slices.Clone(claims.ACLs),
		Metadata:   maps.Clone(claims.Metadata),
	}

	b.mu.Lock()
	b.known[p.AuthID] = p
	b.mu.Unlock()

	return clone(p), nil
}

func (b *Backend) Principal(ctx context.Context, authID string) (backend.Principal, error) {
	b.mu.RLock()
	p, ok := b.known[authID]
	b.mu.RUnlock()
	if !ok {
		return backend.Principal{}, backend.ErrAuthenticationFailed
	}
	return clone(p), nil
}

func clone(p backend.Principal) backend.Principal {
	p.ACLs = slices.Clone(p.ACLs)
	p.Metadata = maps.Clone(p.Metadata)
	return p
}

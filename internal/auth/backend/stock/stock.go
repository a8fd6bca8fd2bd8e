// Package stock implements the default password backend: a YAML user
// directory with argon2id password hashes.
package stock

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"gopkg.in/yaml.v3"
)

// Name is the backend identifier used in token requests.
const Name = "stock"

// User is one entry of the directory file.
type User struct {
	Username     string         `yaml:"username"`
	PasswordHash string         `yaml:"password_hash"` // argon2id PHC string
	AuthID       string         `yaml:"auth_id"`
	UserUUID     string         `yaml:"user_uuid"`
	TenantUUID   string         `yaml:"tenant_uuid"`
	ACLs         []string       `yaml:"acls"`
	Metadata     map[string]any `yaml:"metadata"`
}

type directory struct {
	Users []User `yaml:"users"`
}

// Backend authenticates against an in-memory copy of the user directory.
type Backend struct {
	byUsername map[string]User
	byAuthID   map[string]User

	// dummyHash is verified when the username is unknown so both failure
	// paths cost the same.
	dummyHash string
}

// LoadFile reads a directory file.
func LoadFile(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stock: read users file: %w", err)
	}

	var dir directory
	if err := yaml.Unmarshal(raw, &dir); err != nil {
		return nil, fmt.Errorf("stock: parse users file: %w", err)
	}
	return New(dir.Users)
}

// New builds a backend from users. Usernames and auth ids must be unique.
func New(users []User) (*Backend, error) {
	b := &Backend{
		byUsername: make(map[string]User, len(users)),
		byAuthID:   make(map[string]User, len(users)),
	}
	for _, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("stock: user entry needs username and password_hash")
		}
		if u.AuthID == "" {
			u.AuthID = u.Username
		}
		if _, dup := b.byUsername[u.Username]; dup {
			return nil, fmt.Errorf("stock: duplicate username %q", u.Username)
		}
		if _, dup := b.byAuthID[u.AuthID]; dup {
			return nil, fmt.Errorf("stock: duplicate auth_id %q", u.AuthID)
		}
		b.byUsername[u.Username] = u
		b.byAuthID[u.AuthID] = u
	}

	dummy, err := cryptox.HashPassword("stock-backend-dummy")
	if err != nil {
		return nil, fmt.Errorf("stock: %w", err)
	}
	b.dummyHash = dummy
	return b, nil
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Authenticate(ctx context.Context, creds backend.Credentials) (backend.Principal, error) {
	u, ok := b.byUsername[creds.Login]
	if !ok {
		_ = cryptox.VerifyPassword(creds.Password, b.dummyHash)
		return backend.Principal{}, backend.ErrAuthenticationFailed
	}
	if err := cryptox.VerifyPassword(creds.Password, u.PasswordHash); err != nil {
		return backend.Principal{}, backend.ErrAuthenticationFailed
	}
	return principal(u), nil
}

func (b *Backend) Principal(ctx context.Context, authID string) (backend.Principal, error) {
	u, ok := b.byAuthID[authID]
	if !ok {
		return backend.Principal{}, backend.ErrAuthenticationFailed
	}
	return principal(u), nil
}

func principal(u User) backend.Principal {
	return backend.Principal{
		AuthID:     u.AuthID,
		UserUUID:   u.UserUUID,
		TenantUUID: u.TenantUUID,
		ACLs:       slices.Clone(u.ACLs),
		Metadata:   maps.Clone(u.Metadata),
	}
}

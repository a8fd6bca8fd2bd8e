package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims an upstream identity provider puts in an assertion.
// The subject is the auth id; the custom fields carry the principal facts.
type Claims struct {
	jwt.RegisteredClaims

	UserUUID   string         `json:"user_uuid,omitempty"`
	TenantUUID string         `json:"tenant_uuid,omitempty"`
	ACLs       []string       `json:"acls,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ValidateIssuer checks the iss claim. An empty expectation matches anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf against now, allowing leeway for skew.
// A missing exp is rejected.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

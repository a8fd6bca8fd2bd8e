package domain

import (
	"maps"
	"slices"
	"time"
)

// AccessType selects whether a refresh token is minted alongside the access token.
type AccessType string

const (
	AccessOnline  AccessType = "online"
	AccessOffline AccessType = "offline"
)

// Valid reports whether t is one of the known access types.
func (t AccessType) Valid() bool {
	return t == AccessOnline || t == AccessOffline
}

// Token is an issued access token record.
type Token struct {
	ID          string // uuid v4, primary lookup key
	AuthID      string // identity reported by the backend
	BackendName string
	UserUUID    string // optional platform user
	TenantUUID  string // empty for tenant-unscoped tokens
	ACLs        []string
	Metadata    map[string]any
	SessionUUID string
	SessionType string // mobile | desktop | empty, no authorization effect
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ExpiredAt reports whether the token is no longer valid at now.
func (t Token) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Clone returns a copy that shares no slices or maps with t.
func (t Token) Clone() Token {
	t.ACLs = slices.Clone(t.ACLs)
	t.Metadata = maps.Clone(t.Metadata)
	return t
}

// RefreshToken models the stored refresh token record. At most one record
// exists per (AuthID, ClientID).
type RefreshToken struct {
	ID          string // record id (ULID)
	Token       string // opaque value, only set right after minting; never persisted
	TokenHash   string // deterministic fingerprint (base64url SHA-256) of Token
	AuthID      string
	BackendName string
	ClientID    string
	SessionUUID string // session re-used by tokens issued from this refresh token
	CreatedAt   time.Time
}

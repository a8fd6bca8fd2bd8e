package authsdk

import "time"

// ============================================================================
// Error Body
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error"`
	Reason     []string  `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// ============================================================================
// Token Types
// ============================================================================

// Access types accepted by POST /token.
const (
	AccessTypeOnline  = "online"
	AccessTypeOffline = "offline"
)

// Session types accepted in the X-Session-Type header.
const (
	SessionTypeMobile  = "mobile"
	SessionTypeDesktop = "desktop"
)

// SessionTypeHeader declares the kind of client creating a token. It is
// stored with the token and has no authorization effect.
const SessionTypeHeader = "X-Session-Type"

// CreateTokenRequest is the JSON body of POST /token. Username and password
// travel in the Basic authorization header instead.
type CreateTokenRequest struct {
	// Backend selects the authentication backend. Empty uses the server default.
	Backend string `json:"backend,omitempty"`

	// Expiration is the requested lifetime in seconds. Zero uses the server
	// default.
	Expiration int `json:"expiration,omitempty"`

	// AccessType is "online" (default) or "offline". Offline tokens come with
	// a refresh token bound to ClientID.
	AccessType string `json:"access_type,omitempty"`

	ClientID string `json:"client_id,omitempty"`

	// RefreshToken authenticates instead of a username and password.
	RefreshToken string `json:"refresh_token,omitempty"`

	// SessionType is sent as the X-Session-Type header.
	SessionType string `json:"-"`
}

// TokenResponse describes an issued access token.
type TokenResponse struct {
	// Token is the access token id presented to GET /token/{token}.
	Token string `json:"token"`

	// TokenID mirrors Token.
	TokenID string `json:"token_id"`

	AuthID       string         `json:"auth_id"`
	UserUUID     string         `json:"user_uuid,omitempty"`
	TenantUUID   string         `json:"tenant_uuid,omitempty"`
	InstanceUUID string         `json:"instance_uuid"`
	Backend      string         `json:"backend"`
	ACLs         []string       `json:"acls"`
	Metadata     map[string]any `json:"metadata"`
	SessionUUID  string         `json:"session_uuid"`
	SessionType  string         `json:"session_type,omitempty"`

	// IssuedAt and ExpiresAt are in the server's local time zone.
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	UTCIssuedAt  time.Time `json:"utc_issued_at"`
	UTCExpiresAt time.Time `json:"utc_expires_at"`

	// RefreshToken is only present when an offline token was created.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenEnvelope wraps token responses.
type TokenEnvelope struct {
	Data TokenResponse `json:"data"`
}

// ValidateOptions restrict GET and HEAD /token/{token}.
type ValidateOptions struct {
	// Scope is an ACL the token must grant, e.g. "confd.users.read".
	Scope string

	// Tenant is a tenant uuid that must lie within the token's tenant subtree.
	Tenant string
}

// ============================================================================
// Backend Types
// ============================================================================

// BackendsResponse lists the enabled authentication backends.
type BackendsResponse struct {
	Data []string `json:"data"`
}

// ============================================================================
// Refresh Token Types
// ============================================================================

// RefreshTokenInfo describes a stored refresh token. The token value itself
// is never returned after creation.
type RefreshTokenInfo struct {
	ClientID    string    `json:"client_id"`
	Backend     string    `json:"backend"`
	SessionUUID string    `json:"session_uuid"`
	CreatedAt   time.Time `json:"created_at"`
}

// RefreshTokenList is the response of GET /users/{auth_id}/tokens.
type RefreshTokenList struct {
	Items []RefreshTokenInfo `json:"items"`
	Total int                `json:"total"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// InstanceUUID identifies the platform instance, as returned in tokens.
	InstanceUUID string `json:"instance_uuid,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the readiness of each dependency.
type HealthChecks struct {
	// Database is the token store status.
	Database string `json:"database"`

	// Tenants reports whether the tenant hierarchy has been loaded.
	Tenants string `json:"tenants"`
}

package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidExpiration    = errors.New("invalid_expiration")
	ErrAuthenticationFailed = errors.New("authentication_failed")
	ErrBackendUnavailable   = errors.New("backend_unavailable")
	ErrTokenNotFound        = errors.New("token_not_found")
	ErrInsufficientScope    = errors.New("insufficient_scope")
	ErrTenantMismatch       = errors.New("tenant_mismatch")
	ErrDataIntegrity        = errors.New("data_integrity")

	// ErrTokenExpired is never returned to callers; expiry is reported as
	// ErrTokenNotFound so expired, revoked and unknown tokens look alike.
	ErrTokenExpired = errors.New("token_expired")
)

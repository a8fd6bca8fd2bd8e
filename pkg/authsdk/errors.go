package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidExpiration    = "invalid_expiration"
	ErrorCodeAuthenticationFailed = "authentication_failed"
	ErrorCodeBackendUnavailable   = "backend_unavailable"
	ErrorCodeTokenNotFound        = "token_not_found"
	ErrorCodeInsufficientScope    = "insufficient_scope"
	ErrorCodeTenantMismatch       = "tenant_mismatch"
	ErrorCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrorCodeServerError          = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error type shared by the server, which writes it, and the
// client, which decodes it.
type APIError struct {
	StatusCode int       `json:"status_code"`
	Code       string    `json:"error"`
	Reason     []string  `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Reason) == 0 {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(e.Reason, "; "))
}

// Is matches on status and code, so errors.Is(err, authsdk.ErrTokenNotFound)
// works for decoded responses.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode && t.Code == e.Code
}

// WithReason returns a copy of e carrying reason.
func (e *APIError) WithReason(reason ...string) *APIError {
	cp := *e
	cp.Reason = reason
	return &cp
}

// WriteError writes e as the JSON error body. A zero Timestamp is set to
// the current time.
func (e *APIError) WriteError(w http.ResponseWriter) {
	body := *e
	if body.Timestamp.IsZero() {
		body.Timestamp = time.Now().UTC()
	}
	if body.Reason == nil {
		body.Reason = []string{}
	}
	httpx.WriteJSON(w, e.StatusCode, body)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned for malformed or contradictory input.
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Reason:     []string{"the request is malformed or contradictory"},
	}

	// ErrInvalidExpiration is returned when the requested expiration is out
	// of bounds.
	ErrInvalidExpiration = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidExpiration,
		Reason:     []string{"expiration is out of bounds"},
	}

	// ErrAuthenticationFailed covers bad credentials and unknown refresh
	// tokens alike.
	ErrAuthenticationFailed = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeAuthenticationFailed,
		Reason:     []string{"authentication failed"},
	}

	// ErrBackendUnavailable is returned when the authentication backend could
	// not be reached. Callers may retry with backoff.
	ErrBackendUnavailable = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeBackendUnavailable,
		Reason:     []string{"authentication backend unavailable"},
	}

	// ErrTokenNotFound is returned for absent, expired and revoked tokens.
	ErrTokenNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeTokenNotFound,
		Reason:     []string{"no such token"},
	}

	// ErrInsufficientScope is returned when the token's ACLs do not grant the
	// requested scope.
	ErrInsufficientScope = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeInsufficientScope,
		Reason:     []string{"the token does not grant the requested scope"},
	}

	// ErrTenantMismatch is returned when the requested tenant is outside the
	// token's tenant subtree.
	ErrTenantMismatch = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeTenantMismatch,
		Reason:     []string{"tenant is not accessible with this token"},
	}

	// ErrRateLimitExceeded is returned with a Retry-After header.
	ErrRateLimitExceeded = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimitExceeded,
		Reason:     []string{"too many requests, retry later"},
	}

	// ErrServerError is returned for unexpected failures.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Reason:     []string{"internal server error"},
	}
)

// NewAPIError creates an APIError with the given status, code and reasons.
func NewAPIError(statusCode int, code string, reason ...string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Reason: reason}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Bodyless
// responses (HEAD) are classified by status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Error,
			Reason:     errResp.Reason,
			Timestamp:  errResp.Timestamp,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       codeForStatus(resp.StatusCode),
		Reason:     []string{fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))},
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrorCodeAuthenticationFailed
	case http.StatusForbidden:
		return ErrorCodeInsufficientScope
	case http.StatusNotFound:
		return ErrorCodeTokenNotFound
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimitExceeded
	default:
		return ErrorCodeServerError
	}
}

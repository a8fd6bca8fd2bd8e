package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// writeError maps service errors onto the API error body. Client errors
// carry the service message as reason; authentication failures and server
// errors use a fixed one.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidExpiration):
		apiErr = authsdk.ErrInvalidExpiration.WithReason(err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		apiErr = authsdk.ErrInvalidRequest.WithReason(err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		apiErr = authsdk.ErrAuthenticationFailed
	case errors.Is(err, service.ErrBackendUnavailable):
		log.Warn("authentication backend unavailable", "error", err)
		apiErr = authsdk.ErrBackendUnavailable
	case errors.Is(err, service.ErrTokenNotFound):
		apiErr = authsdk.ErrTokenNotFound
	case errors.Is(err, service.ErrInsufficientScope):
		apiErr = authsdk.ErrInsufficientScope
	case errors.Is(err, service.ErrTenantMismatch), errors.Is(err, service.ErrDataIntegrity):
		apiErr = authsdk.ErrTenantMismatch
	default:
		log.Error("request failed", "error", err)
		apiErr = authsdk.ErrServerError
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(apiErr.StatusCode)
		return
	}
	apiErr.WriteError(w)
}

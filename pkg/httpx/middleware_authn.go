package httpx

import (
	"context"
	"net/http"
)

// AuthTokenHeader carries the caller's access token on protected routes.
const AuthTokenHeader = "X-Auth-Token"

// TokenVerifier checks token against scope and returns the token's auth id.
type TokenVerifier func(ctx context.Context, token, scope string) (authID string, err error)

// ErrorWriter renders a failed verification.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireToken verifies the X-Auth-Token header against the scope scopeFor
// derives from the request. The route's scope usually embeds path values,
// which is why it is computed per request. On success the caller's auth id is
// available through AuthIDFromContext.
func RequireToken(verify TokenVerifier, scopeFor func(*http.Request) string, onError ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AuthTokenHeader)

			authID, err := verify(r.Context(), token, scopeFor(r))
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthID(r.Context(), authID)))
		})
	}
}

package httpx

import "context"

type ctxKey string

const ctxKeyAuthID ctxKey = "auth_id"

// WithAuthID records the authenticated caller on ctx.
func WithAuthID(ctx context.Context, authID string) context.Context {
	return context.WithValue(ctx, ctxKeyAuthID, authID)
}

// AuthIDFromContext returns the caller recorded by RequireToken.
func AuthIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyAuthID).(string)
	return id, ok && id != ""
}

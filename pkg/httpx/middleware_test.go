package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRequireToken(t *testing.T) {
	errDenied := errors.New("denied")

	verify := func(_ context.Context, token, scope string) (string, error) {
		if token == "good" && scope == "auth.users.alice-id.tokens.read" {
			return "alice-id", nil
		}
		return "", errDenied
	}
	scopeFor := func(r *http.Request) string {
		return "auth.users." + r.PathValue("auth_id") + ".tokens.read"
	}
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		require.ErrorIs(t, err, errDenied)
		w.WriteHeader(http.StatusForbidden)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /users/{auth_id}/tokens", httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := httpx.AuthIDFromContext(r.Context())
			require.True(t, ok)
			_, _ = w.Write([]byte(id))
		}),
		httpx.RequireToken(verify, scopeFor, onError),
	))

	send := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set(httpx.AuthTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := send("/users/alice-id/tokens", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice-id", rec.Body.String())

	require.Equal(t, http.StatusForbidden, send("/users/bob-id/tokens", "good").Code)
	require.Equal(t, http.StatusForbidden, send("/users/alice-id/tokens", "").Code)
}

func TestReadJSON(t *testing.T) {
	type body struct {
		Expiration *int `json:"expiration"`
	}

	read := func(payload string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		err := httpx.ReadJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	b, err := read(`{"expiration": 60}`)
	require.NoError(t, err)
	require.Equal(t, 60, *b.Expiration)

	b, err = read("")
	require.NoError(t, err)
	require.Nil(t, b.Expiration)

	_, err = read(`{"expiration": "soon"}`)
	require.Error(t, err)

	_, err = read(`{} {}`)
	require.Error(t, err)

	_, err = read(`{`)
	require.Error(t, err)
}

func TestWriteJSONDisablesCaching(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}

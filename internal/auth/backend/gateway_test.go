package backend_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name  string
	calls atomic.Int32
	fn    func(call int32) (backend.Principal, error)
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Authenticate(ctx context.Context, creds backend.Credentials) (backend.Principal, error) {
	return f.fn(f.calls.Add(1))
}

func (f *fakeBackend) Principal(ctx context.Context, authID string) (backend.Principal, error) {
	return f.fn(f.calls.Add(1))
}

func newGateway(t *testing.T, b backend.Backend, policy ...string) *backend.Gateway {
	t.Helper()
	reg := backend.NewRegistry()
	require.NoError(t, reg.Register(b, policy...))
	gw := backend.NewGateway(reg, 200*time.Millisecond, 3)
	gw.RetryInterval = time.Millisecond
	return gw
}

func TestGatewayAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("success applies backend policy", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
			return backend.Principal{AuthID: "alice", ACLs: []string{"users.me.read"}}, nil
		}}
		gw := newGateway(t, b, "auth.tokens.me.#", "users.me.read")

		p, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{Login: "alice", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "alice", p.AuthID)
		require.Equal(t, []string{"users.me.read", "auth.tokens.me.#"}, p.ACLs)
	})

	t.Run("unknown backend is an authentication failure", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock"}
		gw := newGateway(t, b)

		_, err := gw.Authenticate(t.Context(), "ldap", backend.Credentials{})
		require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
		require.ErrorIs(t, err, backend.ErrUnknownBackend)
	})

	t.Run("bad credentials are never retried", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
			return backend.Principal{}, backend.ErrAuthenticationFailed
		}}
		gw := newGateway(t, b)

		_, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{})
		require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
		require.EqualValues(t, 1, b.calls.Load())
	})

	t.Run("transport errors are retried", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock", fn: func(call int32) (backend.Principal, error) {
			if call < 3 {
				return backend.Principal{}, fmt.Errorf("dial: %w", backend.ErrUnreachable)
			}
			return backend.Principal{AuthID: "alice"}, nil
		}}
		gw := newGateway(t, b)

		p, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{})
		require.NoError(t, err)
		require.Equal(t, "alice", p.AuthID)
		require.EqualValues(t, 3, b.calls.Load())
	})

	t.Run("retries are bounded", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
			return backend.Principal{}, backend.ErrUnreachable
		}}
		gw := newGateway(t, b)

		_, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{})
		require.ErrorIs(t, err, backend.ErrUnavailable)
		require.EqualValues(t, 4, b.calls.Load())
	})

	t.Run("other errors are unavailable without retry", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
			return backend.Principal{}, errors.New("directory corrupted")
		}}
		gw := newGateway(t, b)

		_, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{})
		require.ErrorIs(t, err, backend.ErrUnavailable)
		require.EqualValues(t, 1, b.calls.Load())
	})

	t.Run("slow backend times out", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)
		b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
			<-release
			return backend.Principal{AuthID: "late"}, nil
		}}
		gw := newGateway(t, b)
		gw.Timeout = 20 * time.Millisecond

		start := time.Now()
		_, err := gw.Authenticate(t.Context(), "stock", backend.Credentials{})
		require.ErrorIs(t, err, backend.ErrUnavailable)
		require.Less(t, time.Since(start), time.Second)
	})
}

func TestGatewayPrincipal(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{name: "stock", fn: func(int32) (backend.Principal, error) {
		return backend.Principal{AuthID: "alice"}, nil
	}}
	gw := newGateway(t, b, "auth.tokens.me.#")

	p, err := gw.Principal(t.Context(), "stock", "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"auth.tokens.me.#"}, p.ACLs)

	_, err = gw.Principal(t.Context(), "nope", "alice")
	require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	reg := backend.NewRegistry()
	require.NoError(t, reg.Register(&fakeBackend{name: "stock"}))
	require.NoError(t, reg.Register(&fakeBackend{name: "assertion"}))
	require.Error(t, reg.Register(&fakeBackend{name: "stock"}))
	require.Error(t, reg.Register(&fakeBackend{name: ""}))

	require.Equal(t, []string{"assertion", "stock"}, reg.Names())

	_, err := reg.Lookup("missing")
	require.ErrorIs(t, err, backend.ErrUnknownBackend)
}

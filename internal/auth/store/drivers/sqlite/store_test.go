package sqlite_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleToken(id string) domain.Token {
	return domain.Token{
		ID:          id,
		AuthID:      "alice",
		BackendName: "stock",
		UserUUID:    "u-1",
		TenantUUID:  "t-1",
		ACLs:        []string{"users.me.read", "auth.tokens.#"},
		Metadata:    map[string]any{"display_name": "Alice", "tags": []any{"a", "b"}},
		SessionUUID: "s-1",
		SessionType: "mobile",
		IssuedAt:    t0,
		ExpiresAt:   t0.Add(time.Hour),
	}
}

func TestApplyMigrationsTwice(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(t.Context()))
}

func TestTokens(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	tok := sampleToken("tok-1")
	require.NoError(t, st.Tokens().Put(ctx, tok))

	t.Run("get returns the stored payload", func(t *testing.T) {
		got, err := st.Tokens().Get(ctx, "tok-1", t0.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, tok, got)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := st.Tokens().Put(ctx, tok)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("expired token is not found before any sweep", func(t *testing.T) {
		_, err := st.Tokens().Get(ctx, "tok-1", t0.Add(time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("optional fields round trip empty", func(t *testing.T) {
		bare := domain.Token{
			ID:          "tok-bare",
			AuthID:      "bob",
			BackendName: "stock",
			ACLs:        []string{},
			Metadata:    map[string]any{},
			SessionUUID: "s-2",
			IssuedAt:    t0,
			ExpiresAt:   t0.Add(time.Minute),
		}
		require.NoError(t, st.Tokens().Put(ctx, bare))
		got, err := st.Tokens().Get(ctx, "tok-bare", t0)
		require.NoError(t, err)
		require.Equal(t, bare, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, st.Tokens().Delete(ctx, "tok-1"))
		require.ErrorIs(t, st.Tokens().Delete(ctx, "tok-1"), store.ErrNotFound)

		_, err := st.Tokens().Get(ctx, "tok-1", t0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteExpired(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	for i, ttl := range []time.Duration{time.Minute, 2 * time.Minute, time.Hour} {
		tok := sampleToken(fmt.Sprintf("tok-%d", i))
		tok.ExpiresAt = t0.Add(ttl)
		require.NoError(t, st.Tokens().Put(ctx, tok))
	}

	n, err := st.Tokens().DeleteExpired(ctx, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = st.Tokens().Get(ctx, "tok-2", t0)
	require.NoError(t, err)
}

func refresh(id, authID, clientID string) domain.RefreshToken {
	return domain.RefreshToken{
		ID:          id,
		TokenHash:   "hash-" + id,
		AuthID:      authID,
		BackendName: "stock",
		ClientID:    clientID,
		SessionUUID: "s-" + id,
		CreatedAt:   t0,
	}
}

func TestRefreshTokenReplace(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	old, err := st.RefreshTokens().Replace(ctx, refresh("r1", "alice", "app1"))
	require.NoError(t, err)
	require.Nil(t, old)

	old, err = st.RefreshTokens().Replace(ctx, refresh("r2", "alice", "app1"))
	require.NoError(t, err)
	require.NotNil(t, old)
	require.Equal(t, "r1", old.ID)

	_, err = st.RefreshTokens().Get(ctx, "hash-r1")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := st.RefreshTokens().Get(ctx, "hash-r2")
	require.NoError(t, err)
	require.Equal(t, refresh("r2", "alice", "app1"), got)

	// Another client of the same principal is independent.
	old, err = st.RefreshTokens().Replace(ctx, refresh("r3", "alice", "app2"))
	require.NoError(t, err)
	require.Nil(t, old)

	list, err := st.RefreshTokens().ListByAuthID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, st.RefreshTokens().Delete(ctx, "alice", "app2"))
	require.ErrorIs(t, st.RefreshTokens().Delete(ctx, "alice", "app2"), store.ErrNotFound)
}

func TestRefreshTokenReplaceConcurrent(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		replaced int
		errs     []error
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.WithTx(ctx, func(tx store.Tx) error {
				old, err := tx.RefreshTokens().Replace(ctx, refresh(fmt.Sprintf("r%d", i), "alice", "app1"))
				if err != nil {
					return err
				}
				if old != nil {
					mu.Lock()
					replaced++
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	// Every writer but the first displaced exactly one predecessor.
	require.Equal(t, n-1, replaced)

	list, err := st.RefreshTokens().ListByAuthID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestWithTxRollback(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Tokens().Put(ctx, sampleToken("tok-tx")))
		if _, err := tx.RefreshTokens().Replace(ctx, refresh("r-tx", "alice", "app1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Tokens().Get(ctx, "tok-tx", t0)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.RefreshTokens().Get(ctx, "hash-r-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNestedTxRejected(t *testing.T) {
	st := newStore(t)
	err := st.WithTx(t.Context(), func(tx store.Tx) error {
		_, err := tx.Tx(t.Context())
		return err
	})
	require.Error(t, err)
}

func TestRefreshRetention(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	oldRec := refresh("r-old", "alice", "app1")
	oldRec.CreatedAt = t0.Add(-48 * time.Hour)
	_, err := st.RefreshTokens().Replace(ctx, oldRec)
	require.NoError(t, err)
	_, err = st.RefreshTokens().Replace(ctx, refresh("r-new", "alice", "app2"))
	require.NoError(t, err)

	n, err := st.RefreshTokens().DeleteCreatedBefore(ctx, t0.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestTenants(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	require.NoError(t, st.Tenants().Upsert(ctx, domain.Tenant{UUID: "root", Name: "Root"}))
	require.NoError(t, st.Tenants().Upsert(ctx, domain.Tenant{UUID: "a", ParentUUID: "root"}))
	require.NoError(t, st.Tenants().Upsert(ctx, domain.Tenant{UUID: "a", ParentUUID: "root", Name: "A"}))

	list, err := st.Tenants().List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Tenant{
		{UUID: "a", ParentUUID: "root", Name: "A"},
		{UUID: "root", Name: "Root"},
	}, list)
}

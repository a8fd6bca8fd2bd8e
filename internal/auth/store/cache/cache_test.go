package cache_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/cache"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*sqlite.Store, *cache.Store) {
	t.Helper()
	inner, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, inner.ApplyMigrations())

	c, err := cache.New(inner, cache.Config{
		MaxEntries:  100,
		MaxLifetime: 10 * time.Hour,
		Now:         func() time.Time { return t0 },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return inner, c
}

func token(id string) domain.Token {
	return domain.Token{
		ID:          id,
		AuthID:      "alice",
		BackendName: "stock",
		ACLs:        []string{"a.b"},
		Metadata:    map[string]any{},
		SessionUUID: "s-1",
		IssuedAt:    t0,
		ExpiresAt:   t0.Add(time.Hour),
	}
}

func TestGetServesFromCache(t *testing.T) {
	inner, c := setup(t)
	ctx := t.Context()

	require.NoError(t, c.Tokens().Put(ctx, token("tok-1")))

	got, err := c.Tokens().Get(ctx, "tok-1", t0)
	require.NoError(t, err)
	require.Equal(t, "alice", got.AuthID)

	// Remove the row behind the cache's back: a hit still answers.
	require.NoError(t, inner.Tokens().Delete(ctx, "tok-1"))
	got, err = c.Tokens().Get(ctx, "tok-1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, "tok-1", got.ID)

	t.Run("cached entry honours expiry", func(t *testing.T) {
		_, err := c.Tokens().Get(ctx, "tok-1", t0.Add(time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCachedValueIsNotShared(t *testing.T) {
	_, c := setup(t)
	ctx := t.Context()
	require.NoError(t, c.Tokens().Put(ctx, token("tok-1")))

	got, err := c.Tokens().Get(ctx, "tok-1", t0)
	require.NoError(t, err)
	got.ACLs[0] = "mutated"

	again, err := c.Tokens().Get(ctx, "tok-1", t0)
	require.NoError(t, err)
	require.Equal(t, []string{"a.b"}, again.ACLs)
}

func TestRevokedTokenIsNeverServed(t *testing.T) {
	_, c := setup(t)
	ctx := t.Context()

	require.NoError(t, c.Tokens().Put(ctx, token("tok-1")))
	_, err := c.Tokens().Get(ctx, "tok-1", t0)
	require.NoError(t, err)

	require.NoError(t, c.Tokens().Delete(ctx, "tok-1"))
	_, err = c.Tokens().Get(ctx, "tok-1", t0)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, c.Tokens().Delete(ctx, "tok-1"), store.ErrNotFound)
}

func TestPruneTombstones(t *testing.T) {
	_, c := setup(t)
	ctx := t.Context()

	require.NoError(t, c.Tokens().Put(ctx, token("cached")))
	_, err := c.Tokens().Get(ctx, "cached", t0)
	require.NoError(t, err)
	require.NoError(t, c.Tokens().Delete(ctx, "cached"))

	// Stored but never cached: kept for the maximum lifetime.
	require.NoError(t, c.Tokens().Put(ctx, token("stored")))
	require.NoError(t, c.Tokens().Delete(ctx, "stored"))

	require.Equal(t, 0, c.Prune(t0.Add(time.Minute)))
	require.Equal(t, 1, c.Prune(t0.Add(time.Hour)))
	require.Equal(t, 1, c.Prune(t0.Add(10*time.Hour)))
}

func TestDeleteUnknownLeavesNoTombstone(t *testing.T) {
	_, c := setup(t)
	ctx := t.Context()

	for i := range 50 {
		id := fmt.Sprintf("bogus-%d", i)
		require.ErrorIs(t, c.Tokens().Delete(ctx, id), store.ErrNotFound)
	}
	require.Equal(t, 0, c.Prune(t0.Add(10*time.Hour)))

	// A later Put for the same id is still served.
	require.NoError(t, c.Tokens().Put(ctx, token("bogus-0")))
	got, err := c.Tokens().Get(ctx, "bogus-0", t0)
	require.NoError(t, err)
	require.Equal(t, "bogus-0", got.ID)
}

func TestTransactionsPassThrough(t *testing.T) {
	_, c := setup(t)
	ctx := t.Context()

	err := c.WithTx(ctx, func(tx store.Tx) error {
		return tx.Tokens().Put(ctx, token("tok-tx"))
	})
	require.NoError(t, err)

	_, err = c.Tokens().Get(ctx, "tok-tx", t0)
	require.NoError(t, err)
}

package postgres

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewFromPool(mock)
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

var tokenColumns = []string{
	"id", "auth_id", "backend_name", "user_uuid", "tenant_uuid", "acls", "metadata",
	"session_uuid", "session_type", "issued_at", "expires_at",
}

func TestTokensPut(t *testing.T) {
	mock, st := newMock(t)

	tok := domain.Token{
		ID:          "tok-1",
		AuthID:      "alice",
		BackendName: "stock",
		TenantUUID:  "t-1",
		ACLs:        []string{"users.me.read"},
		Metadata:    map[string]any{"k": "v"},
		SessionUUID: "s-1",
		IssuedAt:    t0,
		ExpiresAt:   t0.Add(time.Hour),
	}

	mock.ExpectExec(q(insertToken)).
		WithArgs("tok-1", "alice", "stock", nil, "t-1", []string{"users.me.read"}, `{"k":"v"}`, "s-1", nil, t0, t0.Add(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, st.Tokens().Put(t.Context(), tok))

	mock.ExpectExec(q(insertToken)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, st.Tokens().Put(t.Context(), tok), store.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokensGet(t *testing.T) {
	mock, st := newMock(t)
	now := t0.Add(time.Minute)

	mock.ExpectQuery(q(selectLiveToken)).
		WithArgs("tok-1", now).
		WillReturnRows(pgxmock.NewRows(tokenColumns).
			AddRow("tok-1", "alice", "stock", "u-1", "t-1", []string{"a.b"}, `{"k":"v"}`, "s-1", "desktop", t0, t0.Add(time.Hour)))

	got, err := st.Tokens().Get(t.Context(), "tok-1", now)
	require.NoError(t, err)
	require.Equal(t, domain.Token{
		ID:          "tok-1",
		AuthID:      "alice",
		BackendName: "stock",
		UserUUID:    "u-1",
		TenantUUID:  "t-1",
		ACLs:        []string{"a.b"},
		Metadata:    map[string]any{"k": "v"},
		SessionUUID: "s-1",
		SessionType: "desktop",
		IssuedAt:    t0,
		ExpiresAt:   t0.Add(time.Hour),
	}, got)

	mock.ExpectQuery(q(selectLiveToken)).
		WithArgs("gone", now).
		WillReturnError(pgx.ErrNoRows)
	_, err = st.Tokens().Get(t.Context(), "gone", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokensDelete(t *testing.T) {
	mock, st := newMock(t)

	mock.ExpectExec(q(deleteToken)).WithArgs("tok-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q(deleteToken)).WithArgs("tok-1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q(deleteExpiredTokens)).WithArgs(t0).WillReturnResult(pgxmock.NewResult("DELETE", 7))

	require.NoError(t, st.Tokens().Delete(t.Context(), "tok-1"))
	require.ErrorIs(t, st.Tokens().Delete(t.Context(), "tok-1"), store.ErrNotFound)

	n, err := st.Tokens().DeleteExpired(t.Context(), t0)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

var refreshCols = []string{"id", "token_hash", "auth_id", "backend_name", "client_id", "session_uuid", "created_at"}

func TestRefreshReplaceLocksPairInsideTx(t *testing.T) {
	mock, st := newMock(t)

	rt := domain.RefreshToken{
		ID:          "r2",
		TokenHash:   "h2",
		AuthID:      "alice",
		BackendName: "stock",
		ClientID:    "app1",
		SessionUUID: "s-2",
		CreatedAt:   t0,
	}

	mock.ExpectBegin()
	mock.ExpectExec(q(lockRefreshPair)).
		WithArgs("alice", "app1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(q(selectRefreshByPair)).
		WithArgs("alice", "app1").
		WillReturnRows(pgxmock.NewRows(refreshCols).AddRow("r1", "h1", "alice", "stock", "app1", "s-1", t0.Add(-time.Hour)))
	mock.ExpectExec(q(upsertRefresh)).
		WithArgs("r2", "h2", "alice", "stock", "app1", "s-2", t0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	old, err := st.RefreshTokens().Replace(t.Context(), rt)
	require.NoError(t, err)
	require.NotNil(t, old)
	require.Equal(t, "r1", old.ID)
	require.Equal(t, "s-1", old.SessionUUID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshReplaceFirstToken(t *testing.T) {
	mock, st := newMock(t)
	rt := domain.RefreshToken{ID: "r1", TokenHash: "h1", AuthID: "alice", BackendName: "stock", ClientID: "app1", SessionUUID: "s-1", CreatedAt: t0}

	mock.ExpectBegin()
	mock.ExpectExec(q(lockRefreshPair)).WithArgs("alice", "app1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(q(selectRefreshByPair)).WithArgs("alice", "app1").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(q(upsertRefresh)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := st.WithTx(t.Context(), func(tx store.Tx) error {
		old, err := tx.RefreshTokens().Replace(t.Context(), rt)
		require.Nil(t, old)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	mock, st := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(q(insertToken)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectRollback()

	err := st.WithTx(t.Context(), func(tx store.Tx) error {
		require.NoError(t, tx.Tokens().Put(t.Context(), domain.Token{ID: "x", IssuedAt: t0, ExpiresAt: t0.Add(time.Second)}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshQueries(t *testing.T) {
	mock, st := newMock(t)

	mock.ExpectQuery(q(selectRefreshByHash)).
		WithArgs("h1").
		WillReturnRows(pgxmock.NewRows(refreshCols).AddRow("r1", "h1", "alice", "stock", "app1", "s-1", t0))
	mock.ExpectQuery(q(selectRefreshByHash)).WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(q(selectRefreshByAuthID)).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(refreshCols).
			AddRow("r2", "h2", "alice", "stock", "app2", "s-2", t0).
			AddRow("r1", "h1", "alice", "stock", "app1", "s-1", t0.Add(-time.Hour)))
	mock.ExpectExec(q(deleteRefresh)).WithArgs("alice", "app1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q(deleteRefreshCreatedBefore)).WithArgs(t0).WillReturnResult(pgxmock.NewResult("DELETE", 3))

	rt, err := st.RefreshTokens().Get(t.Context(), "h1")
	require.NoError(t, err)
	require.Equal(t, "app1", rt.ClientID)

	_, err = st.RefreshTokens().Get(t.Context(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := st.RefreshTokens().ListByAuthID(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "app2", list[0].ClientID)

	require.ErrorIs(t, st.RefreshTokens().Delete(t.Context(), "alice", "app1"), store.ErrNotFound)

	n, err := st.RefreshTokens().DeleteCreatedBefore(t.Context(), t0)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantsRepo(t *testing.T) {
	mock, st := newMock(t)

	mock.ExpectExec(q(upsertTenant)).WithArgs("root", nil, "Root").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(q(selectTenants)).
		WillReturnRows(pgxmock.NewRows([]string{"uuid", "parent_uuid", "name"}).
			AddRow("a", "root", "A").
			AddRow("root", "", "Root"))

	require.NoError(t, st.Tenants().Upsert(t.Context(), domain.Tenant{UUID: "root", Name: "Root"}))

	list, err := st.Tenants().List(t.Context())
	require.NoError(t, err)
	require.Equal(t, []domain.Tenant{
		{UUID: "a", ParentUUID: "root", Name: "A"},
		{UUID: "root", Name: "Root"},
	}, list)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsNeedsRealPool(t *testing.T) {
	_, st := newMock(t)
	require.Error(t, st.ApplyMigrations())
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT 1"
	require.Equal(t, short, truncateSQL(short))

	long := "SELECT " + string(make([]byte, 200))
	require.Len(t, truncateSQL(long), maxStatementLen+3)
}

package postgres

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	tx pgx.Tx

	// ctx is the Begin context without its cancellation, used for
	// Commit/Rollback so a cancelled request can still roll back.
	ctx    context.Context
	q      traced
	tracer trace.Tracer
}

func (t *txStore) Commit() error   { return t.tx.Commit(t.ctx) }
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func (t *txStore) Tokens() store.Tokens               { return &tokensRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.q, tracer: t.tracer} }
func (t *txStore) Tenants() store.Tenants             { return &tenantsRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil }

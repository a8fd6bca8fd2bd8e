package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Serialises replaces of one (auth_id, client_id) pair until the end of
	// the transaction; other pairs hash to other keys and never wait.
	lockRefreshPair = `SELECT pg_advisory_xact_lock(hashtextextended($1 || chr(0) || $2, 0))`

	refreshColumns = `id, token_hash, auth_id, backend_name, client_id, session_uuid, created_at`

	selectRefreshByPair = `SELECT ` + refreshColumns + ` FROM refresh_tokens
WHERE auth_id = $1 AND client_id = $2`

	upsertRefresh = `INSERT INTO refresh_tokens (` + refreshColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (auth_id, client_id) DO UPDATE SET
    id           = EXCLUDED.id,
    token_hash   = EXCLUDED.token_hash,
    backend_name = EXCLUDED.backend_name,
    session_uuid = EXCLUDED.session_uuid,
    created_at   = EXCLUDED.created_at`

	selectRefreshByHash = `SELECT ` + refreshColumns + ` FROM refresh_tokens
WHERE token_hash = $1`

	selectRefreshByAuthID = `SELECT ` + refreshColumns + ` FROM refresh_tokens
WHERE auth_id = $1
ORDER BY created_at DESC`

	deleteRefresh = `DELETE FROM refresh_tokens WHERE auth_id = $1 AND client_id = $2`

	deleteRefreshCreatedBefore = `DELETE FROM refresh_tokens WHERE created_at < $1`
)

type refreshTokensRepo struct {
	q querier

	// begin is set on the root store only; Replace then runs in its own
	// transaction.
	begin  func(ctx context.Context) (pgx.Tx, error)
	tracer trace.Tracer
}

func (r *refreshTokensRepo) Replace(ctx context.Context, rt domain.RefreshToken) (*domain.RefreshToken, error) {
	if r.begin == nil {
		return replaceRefreshToken(ctx, r.q, rt)
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	old, err := replaceRefreshToken(ctx, traced{q: tx, tracer: r.tracer}, rt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return old, nil
}

func replaceRefreshToken(ctx context.Context, q querier, rt domain.RefreshToken) (*domain.RefreshToken, error) {
	if _, err := q.Exec(ctx, lockRefreshPair, rt.AuthID, rt.ClientID); err != nil {
		return nil, fmt.Errorf("postgres: lock refresh token: %w", err)
	}

	var old *domain.RefreshToken
	prev, err := scanRefreshToken(q.QueryRow(ctx, selectRefreshByPair, rt.AuthID, rt.ClientID))
	switch {
	case err == nil:
		old = &prev
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("postgres: read refresh token: %w", err)
	}

	_, err = q.Exec(ctx, upsertRefresh,
		rt.ID,
		rt.TokenHash,
		rt.AuthID,
		rt.BackendName,
		rt.ClientID,
		rt.SessionUUID,
		rt.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, mapConstraint(err)
	}
	return old, nil
}

func (r *refreshTokensRepo) Get(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	rt, err := scanRefreshToken(r.q.QueryRow(ctx, selectRefreshByHash, tokenHash))
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return rt, nil
}

func (r *refreshTokensRepo) ListByAuthID(ctx context.Context, authID string) ([]domain.RefreshToken, error) {
	rows, err := r.q.Query(ctx, selectRefreshByAuthID, authID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshToken
	for rows.Next() {
		rt, err := scanRefreshToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *refreshTokensRepo) Delete(ctx context.Context, authID, clientID string) error {
	tag, err := r.q.Exec(ctx, deleteRefresh, authID, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, deleteRefreshCreatedBefore, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRefreshToken(row pgx.Row) (domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := row.Scan(
		&rt.ID,
		&rt.TokenHash,
		&rt.AuthID,
		&rt.BackendName,
		&rt.ClientID,
		&rt.SessionUUID,
		&rt.CreatedAt,
	)
	rt.CreatedAt = rt.CreatedAt.UTC()
	return rt, err
}

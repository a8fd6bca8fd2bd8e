package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries

	// db is set on the root store only; Replace then opens its own
	// transaction.
	db *sql.DB
}

func (r *refreshTokensRepo) Replace(ctx context.Context, rt domain.RefreshToken) (*domain.RefreshToken, error) {
	if r.db == nil {
		return replaceRefreshToken(ctx, r.q, rt)
	}

	// BEGIN IMMEDIATE (see DSN) takes the write lock up front, so the read
	// below cannot go stale before the upsert.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	old, err := replaceRefreshToken(ctx, gen.New(tx), rt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return old, nil
}

func replaceRefreshToken(ctx context.Context, q *gen.Queries, rt domain.RefreshToken) (*domain.RefreshToken, error) {
	var old *domain.RefreshToken
	row, err := q.GetRefreshTokenByPair(ctx, gen.GetRefreshTokenByPairParams{
		AuthID:   rt.AuthID,
		ClientID: rt.ClientID,
	})
	switch {
	case err == nil:
		prev := mapRefreshToken(row)
		old = &prev
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("sqlite: read refresh token: %w", err)
	}

	err = q.UpsertRefreshToken(ctx, gen.UpsertRefreshTokenParams{
		ID:          rt.ID,
		TokenHash:   rt.TokenHash,
		AuthID:      rt.AuthID,
		BackendName: rt.BackendName,
		ClientID:    rt.ClientID,
		SessionUuid: rt.SessionUUID,
		CreatedAt:   toMicros(rt.CreatedAt),
	})
	if err != nil {
		return nil, mapConstraint(err)
	}
	return old, nil
}

func (r *refreshTokensRepo) Get(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) ListByAuthID(ctx context.Context, authID string) ([]domain.RefreshToken, error) {
	rows, err := r.q.ListRefreshTokensByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RefreshToken, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRefreshToken(row))
	}
	return out, nil
}

func (r *refreshTokensRepo) Delete(ctx context.Context, authID, clientID string) error {
	n, err := r.q.DeleteRefreshToken(ctx, gen.DeleteRefreshTokenParams{
		AuthID:   authID,
		ClientID: clientID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteRefreshTokensCreatedBefore(ctx, toMicros(cutoff))
}

func mapRefreshToken(row gen.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		ID:          row.ID,
		TokenHash:   row.TokenHash,
		AuthID:      row.AuthID,
		BackendName: row.BackendName,
		ClientID:    row.ClientID,
		SessionUUID: row.SessionUuid,
		CreatedAt:   fromMicros(row.CreatedAt),
	}
}

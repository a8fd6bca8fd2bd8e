package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite/gen"
)

type tokensRepo struct {
	q *gen.Queries
}

func (r *tokensRepo) Put(ctx context.Context, t domain.Token) error {
	acls, err := encodeJSON(t.ACLs, "[]")
	if err != nil {
		return fmt.Errorf("sqlite: encode acls: %w", err)
	}
	metadata, err := encodeJSON(t.Metadata, "{}")
	if err != nil {
		return fmt.Errorf("sqlite: encode metadata: %w", err)
	}

	err = r.q.CreateToken(ctx, gen.CreateTokenParams{
		ID:          t.ID,
		AuthID:      t.AuthID,
		BackendName: t.BackendName,
		UserUuid:    mapStringNull(t.UserUUID),
		TenantUuid:  mapStringNull(t.TenantUUID),
		Acls:        acls,
		Metadata:    metadata,
		SessionUuid: t.SessionUUID,
		SessionType: mapStringNull(t.SessionType),
		IssuedAt:    toMicros(t.IssuedAt),
		ExpiresAt:   toMicros(t.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *tokensRepo) Get(ctx context.Context, id string, now time.Time) (domain.Token, error) {
	row, err := r.q.GetLiveToken(ctx, gen.GetLiveTokenParams{
		ID:        id,
		ExpiresAt: toMicros(now),
	})
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return mapToken(row)
}

func (r *tokensRepo) Delete(ctx context.Context, id string) error {
	n, err := r.q.DeleteToken(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredTokens(ctx, toMicros(now))
}

func mapToken(row gen.Token) (domain.Token, error) {
	t := domain.Token{
		ID:          row.ID,
		AuthID:      row.AuthID,
		BackendName: row.BackendName,
		UserUUID:    mapNullString(row.UserUuid),
		TenantUUID:  mapNullString(row.TenantUuid),
		SessionUUID: row.SessionUuid,
		SessionType: mapNullString(row.SessionType),
		IssuedAt:    fromMicros(row.IssuedAt),
		ExpiresAt:   fromMicros(row.ExpiresAt),
	}
	if err := json.Unmarshal([]byte(row.Acls), &t.ACLs); err != nil {
		return domain.Token{}, fmt.Errorf("sqlite: decode acls of %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Metadata), &t.Metadata); err != nil {
		return domain.Token{}, fmt.Errorf("sqlite: decode metadata of %s: %w", row.ID, err)
	}
	return t, nil
}

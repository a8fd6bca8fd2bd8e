package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
)

const (
	insertToken = `INSERT INTO tokens (
    id, auth_id, backend_name, user_uuid, tenant_uuid, acls, metadata,
    session_uuid, session_type, issued_at, expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)`

	selectLiveToken = `SELECT id, auth_id, backend_name, COALESCE(user_uuid, ''), COALESCE(tenant_uuid, ''),
    acls, metadata::text, session_uuid, COALESCE(session_type, ''), issued_at, expires_at
FROM tokens
WHERE id = $1 AND expires_at > $2`

	deleteToken = `DELETE FROM tokens WHERE id = $1`

	deleteExpiredTokens = `DELETE FROM tokens WHERE expires_at <= $1`
)

type tokensRepo struct {
	q querier
}

func (r *tokensRepo) Put(ctx context.Context, t domain.Token) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: encode metadata: %w", err)
	}
	acls := t.ACLs
	if acls == nil {
		acls = []string{}
	}

	_, err = r.q.Exec(ctx, insertToken,
		t.ID,
		t.AuthID,
		t.BackendName,
		nullable(t.UserUUID),
		nullable(t.TenantUUID),
		acls,
		metadata,
		t.SessionUUID,
		nullable(t.SessionType),
		t.IssuedAt.UTC(),
		t.ExpiresAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *tokensRepo) Get(ctx context.Context, id string, now time.Time) (domain.Token, error) {
	var (
		t        domain.Token
		metadata string
	)
	err := r.q.QueryRow(ctx, selectLiveToken, id, now.UTC()).Scan(
		&t.ID,
		&t.AuthID,
		&t.BackendName,
		&t.UserUUID,
		&t.TenantUUID,
		&t.ACLs,
		&metadata,
		&t.SessionUUID,
		&t.SessionType,
		&t.IssuedAt,
		&t.ExpiresAt,
	)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	if err := json.Unmarshal([]byte(metadata), &t.Metadata); err != nil {
		return domain.Token{}, fmt.Errorf("postgres: decode metadata of %s: %w", id, err)
	}
	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}

func (r *tokensRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, deleteToken, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, deleteExpiredTokens, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

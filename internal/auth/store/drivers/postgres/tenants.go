package postgres

import (
	"context"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

const (
	selectTenants = `SELECT uuid, COALESCE(parent_uuid, ''), name FROM tenants ORDER BY uuid`

	upsertTenant = `INSERT INTO tenants (uuid, parent_uuid, name)
VALUES ($1, $2, $3)
ON CONFLICT (uuid) DO UPDATE SET
    parent_uuid = EXCLUDED.parent_uuid,
    name        = EXCLUDED.name`
)

type tenantsRepo struct {
	q querier
}

func (r *tenantsRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.q.Query(ctx, selectTenants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.UUID, &t.ParentUUID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tenantsRepo) Upsert(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.Exec(ctx, upsertTenant, t.UUID, nullable(t.ParentUUID), t.Name)
	return err
}

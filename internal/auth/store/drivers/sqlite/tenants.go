package sqlite

import (
	"context"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite/gen"
)

type tenantsRepo struct {
	q *gen.Queries
}

func (r *tenantsRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.q.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tenant, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Tenant{
			UUID:       row.Uuid,
			ParentUUID: mapNullString(row.ParentUuid),
			Name:       row.Name,
		})
	}
	return out, nil
}

func (r *tenantsRepo) Upsert(ctx context.Context, t domain.Tenant) error {
	return r.q.UpsertTenant(ctx, gen.UpsertTenantParams{
		Uuid:       t.UUID,
		ParentUuid: mapStringNull(t.ParentUUID),
		Name:       t.Name,
	})
}

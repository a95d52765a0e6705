package tenant

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry acceso al catálogo de tenants.
type Registry interface {
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	ListActive(ctx context.Context) ([]*Tenant, error)
}

const tenantSelect = `
		SELECT id, slug, display_name, db_name, db_host, db_port, status, created_at, updated_at
		FROM tenants`

// PostgresRegistry catálogo sobre la base principal.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	var t Tenant
	if err := pgxscan.Get(ctx, r.pool, &t, tenantSelect+` WHERE slug = $1`, slug); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return &t, nil
}

func (r *PostgresRegistry) ListActive(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	if err := pgxscan.Select(ctx, r.pool, &tenants, tenantSelect+` WHERE status = $1 ORDER BY slug`, StatusActive); err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	return tenants, nil
}

var _ Registry = (*PostgresRegistry)(nil)

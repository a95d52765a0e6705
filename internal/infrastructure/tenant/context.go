package tenant

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/billar-api/internal/infrastructure/postgres"
)

type ctxKey int

const (
	poolKey ctxKey = iota
	tenantKey
)

// WithPool guarda el pool del tenant en el contexto.
func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, poolKey, pool)
}

// GetPool pool guardado por WithPool.
func GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(poolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPoolInContext
	}
	return pool, nil
}

// WithTenant guarda el tenant resuelto en el contexto.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// GetTenant tenant del contexto o nil.
func GetTenant(ctx context.Context) *Tenant {
	t, _ := ctx.Value(tenantKey).(*Tenant)
	return t
}

// GetSlug slug del tenant del contexto o "".
func GetSlug(ctx context.Context) string {
	if t := GetTenant(ctx); t != nil {
		return t.Slug
	}
	return ""
}

// ContextPools resuelve el pool desde el contexto de la petición.
type ContextPools struct{}

var _ postgres.PoolSource = ContextPools{}

// Pool implementa postgres.PoolSource.
func (ContextPools) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	return GetPool(ctx)
}

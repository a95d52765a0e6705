package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// PoolSource resuelve el pool de la base del tenant de la petición.
type PoolSource interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
}

// StaticPool PoolSource con un único pool (instalaciones de un solo local, scripts).
type StaticPool struct {
	P *pgxpool.Pool
}

// Pool devuelve siempre el mismo pool.
func (s StaticPool) Pool(context.Context) (*pgxpool.Pool, error) { return s.P, nil }

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL sobre el pool del tenant.
type TxRunner struct {
	pools       PoolSource
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout 0 deja el valor del servidor.
func NewTxRunner(pools PoolSource, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pools: pools, lockTimeout: lockTimeout}
}

// NewRepos repositorios atados a q (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Tables:        NewTableRepository(q),
		Rentals:       NewRentalRepository(q),
		RentalItems:   NewRentalItemRepository(q),
		Products:      NewProductRepository(q),
		Warehouses:    NewWarehouseRepository(q),
		Stocks:        NewStockRepository(q),
		Kardex:        NewKardexRepository(q),
		CashSessions:  NewCashSessionRepository(q),
		CashMovements: NewCashMovementRepository(q),
		Documents:     NewDocumentRepository(q),
		Users:         NewUserRepository(q),
		Analytics:     NewAnalyticsRepository(q),
	}
}

// Run inicia una transacción READ COMMITTED, fija lock_timeout, ejecuta fn con repos atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	pool, err := r.pools.Pool(ctx)
	if err != nil {
		return err
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(NewRepos(tx)); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Read ejecuta fn con repos sobre el pool, sin transacción.
func (r *TxRunner) Read(ctx context.Context, fn func(repos repository.Repos) error) error {
	pool, err := r.pools.Pool(ctx)
	if err != nil {
		return err
	}
	return mapError(fn(NewRepos(pool)))
}

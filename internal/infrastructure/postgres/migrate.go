package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/billar-api/migrations"
)

// migrationLockKey clave de pg_advisory_xact_lock compartida por todos los procesos de migración.
const migrationLockKey = 7314001

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ApplyMigrations aplica en orden las migraciones pendientes; cada una en su propia transacción.
// Devuelve las versiones aplicadas en esta llamada.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, list []migrations.Migration) ([]string, error) {
	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("crear schema_migrations: %w", err)
	}
	var applied []string
	for _, m := range list {
		ok, err := applyOne(ctx, pool, m)
		if err != nil {
			return applied, fmt.Errorf("migración %s: %w", m.Version, err)
		}
		if ok {
			applied = append(applied, m.Version)
		}
	}
	return applied, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, m migrations.Migration) (bool, error) {
	done := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			return err
		}
		done = true
		return nil
	})
	return done, err
}

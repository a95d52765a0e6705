// Command migrate aplica el esquema embebido.
//
//	migrate catalog              base de catálogo (tabla tenants)
//	migrate tenants              todas las bases de tenants activos
//	migrate tenants --slug sol   una sola base
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/billar-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billar-api/internal/infrastructure/tenant"
	"github.com/jhoicas/billar-api/migrations"
	"github.com/jhoicas/billar-api/pkg/config"
	"github.com/jhoicas/billar-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name}).Component("migrate")
	ctx := context.Background()

	catalog, err := postgres.NewPool(ctx, cfg.DB.ConnectionString(), postgres.PoolOptions{MaxConns: 2, ForceIPv4: cfg.DB.ForceIPv4})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de catálogo")
	}
	defer catalog.Close()

	switch os.Args[1] {
	case "catalog":
		list, err := migrations.Load(migrations.Catalog)
		if err != nil {
			log.Fatal().Err(err).Msg("leer migraciones")
		}
		applied, err := postgres.ApplyMigrations(ctx, catalog, list)
		if err != nil {
			log.Fatal().Err(err).Msg("migrar catálogo")
		}
		log.Info().Str("target", "catalog").Strs("applied", applied).Msg("esquema al día")
	case "tenants":
		slug := ""
		for i := 2; i < len(os.Args); i++ {
			if os.Args[i] == "--slug" && i+1 < len(os.Args) {
				slug = os.Args[i+1]
				i++
			}
		}
		registry := tenant.NewPostgresRegistry(catalog)
		var list []*tenant.Tenant
		if slug != "" {
			t, err := registry.GetBySlug(ctx, slug)
			if err != nil {
				log.Fatal().Err(err).Str("slug", slug).Msg("buscar tenant")
			}
			list = []*tenant.Tenant{t}
		} else if list, err = registry.ListActive(ctx); err != nil {
			log.Fatal().Err(err).Msg("listar tenants")
		}
		failed := 0
		for _, t := range list {
			if err := run(ctx, log, t.Slug, cfg.Tenant.DSNAt(t.DBHost, t.DBPort, t.DBName), migrations.Tenant, cfg.DB.ForceIPv4); err != nil {
				log.Error().Err(err).Str("tenant", t.Slug).Msg("migración fallida")
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("comando desconocido: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, target, dsn string, set migrations.Set, ipv4 bool) error {
	list, err := migrations.Load(set)
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 2, ForceIPv4: ipv4})
	if err != nil {
		return err
	}
	defer pool.Close()
	applied, err := postgres.ApplyMigrations(ctx, pool, list)
	if err != nil {
		return err
	}
	log.Info().Str("target", target).Strs("applied", applied).Msg("esquema al día")
	return nil
}

func printUsage() {
	fmt.Println(`migrate <catalog|tenants> [--slug <slug>]

Variables: DATABASE_URL o DB_*, TENANT_DB_USER, TENANT_DB_PASSWORD, TENANT_DB_HOST.`)
}

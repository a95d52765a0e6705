package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/billar-api/internal/application/analytics"
	"github.com/jhoicas/billar-api/internal/application/auth"
	"github.com/jhoicas/billar-api/internal/application/billing"
	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/billar-api/internal/infrastructure/pdf"
	"github.com/jhoicas/billar-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billar-api/internal/infrastructure/storage"
	"github.com/jhoicas/billar-api/internal/infrastructure/tenant"
	httpRouter "github.com/jhoicas/billar-api/internal/interfaces/http"
	"github.com/jhoicas/billar-api/pkg/config"
	"github.com/jhoicas/billar-api/pkg/logger"
)

// coverBodyLimit portada de 5 MB más el sobre multipart.
const coverBodyLimit = 6 * 1024 * 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	loc, err := time.LoadLocation(cfg.App.Location)
	if err != nil {
		log.Warn().Err(err).Str("location", cfg.App.Location).Msg("zona horaria inválida, se usa UTC")
		loc = time.UTC
	}

	ctx := context.Background()
	catalog, err := postgres.NewPool(ctx, cfg.DB.ConnectionString(), postgres.PoolOptions{ForceIPv4: cfg.DB.ForceIPv4})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de catálogo")
	}
	defer catalog.Close()

	tenants := tenant.NewManager(tenant.ManagerConfig{
		MaxPools:          cfg.Tenant.MaxPools,
		IdleTimeout:       cfg.Tenant.IdleTimeout,
		HealthCheckPeriod: cfg.Tenant.HealthCheckPeriod,
	}, tenant.NewPostgresRegistry(catalog), func(ctx context.Context, t *tenant.Tenant) (*pgxpool.Pool, error) {
		return postgres.NewPool(ctx, cfg.Tenant.DSNAt(t.DBHost, t.DBPort, t.DBName), postgres.PoolOptions{
			MaxConns:          cfg.Tenant.MaxConns,
			MinConns:          cfg.Tenant.MinConns,
			MaxConnIdleTime:   cfg.Tenant.IdleTimeout,
			HealthCheckPeriod: cfg.Tenant.HealthCheckPeriod,
			ForceIPv4:         cfg.DB.ForceIPv4,
		})
	}, log)
	defer tenants.Close()

	// Cada transacción usa el pool que TenantMiddleware dejó en el contexto.
	txRunner := postgres.NewTxRunner(tenant.ContextPools{}, cfg.Billing.LockTimeout)
	clock := ports.SystemClock{}

	blobs, err := storage.NewLocalBlobStore(cfg.Storage.PublicDir, cfg.Storage.BaseURL, tenant.GetSlug)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de portadas")
	}

	cashUC := cash.NewUseCase(txRunner, clock)
	kardexUC := inventory.NewKardexUseCase(txRunner, clock)
	emitter := document.NewEmitter(txRunner, infrapdf.NewMarotoPDFGenerator(cfg.Billing.Locale), cfg.Billing.BusinessName)
	settleUC := billing.NewSettleTableUseCase(txRunner, clock, kardexUC, cashUC, emitter, billing.Config{
		Series:   cfg.Billing.Series,
		Currency: cfg.Billing.Currency,
	}, log.Component("settlement"))
	authUC := auth.NewAuthUseCase(txRunner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    coverBodyLimit,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Billar API",
		}))
	}

	app.Static(cfg.Storage.BaseURL, cfg.Storage.PublicDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "tenant_pools": tenants.Count()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Tenants:      tenants,
		TenantHeader: cfg.Tenant.Header,
		BaseDomain:   cfg.Tenant.BaseDomain,
		RateLimiter: httpRouter.NewTenantRateLimiter(httpRouter.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RPS,
			Burst:             cfg.RateLimit.Burst,
		}),
		JWTSecret: cfg.JWT.Secret,
		Location:  loc,

		AuthUC:      authUC,
		TableUC:     usecase.NewTableUseCase(txRunner, blobs, clock),
		ProductUC:   usecase.NewProductUseCase(txRunner, clock),
		WarehouseUC: usecase.NewWarehouseUseCase(txRunner, clock),
		Occupancy:   rental.NewOccupancyUseCase(txRunner, clock),
		Items:       rental.NewItemsUseCase(txRunner, clock),
		Settle:      settleUC,
		Cash:        cashUC,
		Kardex:      kardexUC,
		Emitter:     emitter,
		Sales:       analytics.NewSalesSummaryUseCase(txRunner, clock, loc, cfg.Billing.Currency),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

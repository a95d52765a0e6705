package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/analytics"
	"github.com/jhoicas/billar-api/internal/application/auth"
	"github.com/jhoicas/billar-api/internal/application/billing"
	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/application/usecase"
	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Tenants      TenantBinder
	TenantHeader string
	BaseDomain   string
	RateLimiter  *TenantRateLimiter
	JWTSecret    string
	Location     *time.Location

	AuthUC      *auth.AuthUseCase
	TableUC     *usecase.TableUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	Occupancy   *rental.OccupancyUseCase
	Items       *rental.ItemsUseCase
	Settle      *billing.SettleTableUseCase
	Cash        *cash.UseCase
	Kardex      *inventory.KardexUseCase
	Emitter     *document.Emitter
	Sales       *analytics.SalesSummaryUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", TenantMiddleware(deps.Tenants, deps.TenantHeader, deps.BaseDomain))
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	// Auth (público dentro del club)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)

	tables := protected.Group("/tables")
	tableHandler := NewTableHandler(deps.TableUC, deps.Occupancy, deps.Settle)
	tables.Get("/", tableHandler.List)
	tables.Post("/", admin, tableHandler.Create)
	tables.Get("/:id", tableHandler.Get)
	tables.Put("/:id", admin, tableHandler.Update)
	tables.Post("/:id/start", tableHandler.Start)
	tables.Post("/:id/pause", tableHandler.Pause)
	tables.Post("/:id/resume", tableHandler.Resume)
	tables.Post("/:id/finish", tableHandler.Finish)
	tables.Post("/:id/cancel", tableHandler.Cancel)
	tables.Post("/:id/cover", admin, tableHandler.UploadCover)
	tables.Delete("/:id/cover", admin, tableHandler.DeleteCover)

	rentalHandler := NewRentalHandler(deps.Occupancy, deps.Items, deps.Location)
	rentals := protected.Group("/rentals")
	rentals.Get("/", rentalHandler.List)
	rentals.Get("/:id", rentalHandler.Get)
	rentals.Put("/:id", rentalHandler.Update)
	rentals.Get("/:id/items", rentalHandler.ListItems)
	rentals.Post("/:id/items", rentalHandler.AddItem)
	rentals.Post("/:id/items/bulk", rentalHandler.AddItemsBulk)
	items := protected.Group("/rental-items")
	items.Put("/:id", rentalHandler.UpdateItem)
	items.Delete("/:id", rentalHandler.VoidItem)

	// Caja; /current antes de /:id
	sessions := protected.Group("/cash-sessions")
	cashHandler := NewCashHandler(deps.Cash, deps.Location)
	sessions.Get("/", cashHandler.List)
	sessions.Get("/current", cashHandler.Current)
	sessions.Post("/open", cashHandler.Open)
	sessions.Get("/:id", cashHandler.Get)
	sessions.Post("/:id/close", cashHandler.Close)
	sessions.Get("/:id/movements", cashHandler.Movements)
	sessions.Post("/:id/movements", cashHandler.AddMovement)

	kardex := protected.Group("/kardex")
	inventoryHandler := NewInventoryHandler(deps.Kardex, deps.Location)
	kardex.Get("/", inventoryHandler.List)
	kardex.Post("/", admin, inventoryHandler.RecordMovement)
	kardex.Post("/transfer", admin, inventoryHandler.Transfer)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", admin, productHandler.Create)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", admin, productHandler.Update)
	products.Get("/:id/stock", inventoryHandler.Stock)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.Get)
	warehouses.Put("/:id", admin, warehouseHandler.Update)

	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.Emitter, deps.Location)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.Get)
	documents.Get("/:id/pdf", documentHandler.PDF)

	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Sales)
	reports.Get("/sales-summary", reportHandler.SalesSummary)
}

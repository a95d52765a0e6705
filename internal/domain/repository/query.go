package repository

import (
	"time"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// Page límites de paginación normalizados.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica límites por defecto (20) y máximo (200).
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// TableQuery filtros del listado de mesas.
type TableQuery struct {
	Status *entity.TableStatus
	Page   Page
}

// RentalQuery filtros del historial de alquileres.
type RentalQuery struct {
	Status  *entity.RentalStatus
	TableID string
	From    *time.Time
	To      *time.Time
	Page    Page
}

// KardexQuery filtros del kardex.
type KardexQuery struct {
	ProductID   string
	WarehouseID string
	Movement    *entity.MovementKind
	From        *time.Time
	To          *time.Time
	Page        Page
}

// CashSessionQuery filtros de sesiones de caja.
type CashSessionQuery struct {
	UserID string
	Status *entity.CashSessionStatus
	From   *time.Time
	To     *time.Time
	Page   Page
}

// DocumentQuery filtros de documentos emitidos.
type DocumentQuery struct {
	Series        string
	PaymentMethod *entity.PaymentMethod
	CashSessionID string
	From          *time.Time
	To            *time.Time
	Page          Page
}

// ProductQuery filtros del catálogo de productos.
type ProductQuery struct {
	Search     string // nombre o SKU
	OnlyActive bool
	Page       Page
}

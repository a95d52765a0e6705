package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto vendible en el POS (bebidas, snacks, accesorios).
// DefaultCost inicializa el costo promedio cuando la fila de stock se crea perezosamente.
type Product struct {
	ID          string
	SKU         string
	Name        string
	UnitName    string
	SalePrice   decimal.Decimal
	DefaultCost decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

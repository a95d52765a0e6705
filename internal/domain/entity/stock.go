package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock existencias y costo promedio de un producto en una bodega.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	AvgUnitCost decimal.Decimal
	UpdatedAt   time.Time
}

// TotalCost valor del saldo al costo promedio.
func (s *Stock) TotalCost() decimal.Decimal {
	return s.Quantity.Mul(s.AvgUnitCost).Round(2)
}

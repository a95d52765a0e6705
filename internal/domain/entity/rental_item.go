package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalItemStatus estado de una línea POS; voided nunca se borra.
type RentalItemStatus string

const (
	ItemOK     RentalItemStatus = "ok"
	ItemVoided RentalItemStatus = "voided"
)

// RentalItem línea de consumo agregada a un alquiler abierto.
type RentalItem struct {
	ID          string
	RentalID    string
	ProductID   *string // nullable: el producto puede borrarse, el nombre queda
	ProductName string
	UnitName    string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	Status      RentalItemStatus
	ClientOpID  *string
	WarehouseID *string
	CreatedBy   string
	VoidedAt    *time.Time
	VoidReason  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecalcTotal total = qty * precio - descuento, a 2 decimales.
func (i *RentalItem) RecalcTotal() {
	i.Total = i.Qty.Mul(i.UnitPrice).Sub(i.Discount).Round(2)
}

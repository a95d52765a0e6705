package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de kardex.
type MovementKind string

const (
	MovementIn          MovementKind = "entrada"
	MovementOut         MovementKind = "salida"
	MovementAdjust      MovementKind = "ajuste"
	MovementTransferIn  MovementKind = "transfer_in"
	MovementTransferOut MovementKind = "transfer_out"
)

// Valid indica si el tipo es conocido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIn, MovementOut, MovementAdjust, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// DocumentKind clase del documento que originó un movimiento.
type DocumentKind string

const (
	DocumentKindSaleNote DocumentKind = "sale_note"
	DocumentKindTransfer DocumentKind = "transfer"
	DocumentKindManual   DocumentKind = "manual"
)

// DocumentRef referencia etiquetada al documento de origen; el kardex nunca la resuelve.
type DocumentRef struct {
	Kind DocumentKind
	ID   string
}

// KardexEntry fila inmutable del kardex con saldos posteriores al movimiento.
type KardexEntry struct {
	ID                 string
	ProductID          string
	WarehouseID        string
	Movement           MovementKind
	QuantityIn         decimal.Decimal
	QuantityOut        decimal.Decimal
	UnitCost           decimal.Decimal
	TotalCost          decimal.Decimal
	BalanceQty         decimal.Decimal
	BalanceAvgUnitCost decimal.Decimal
	BalanceTotalCost   decimal.Decimal
	Reference          string
	Description        string
	Document           *DocumentRef
	UserID             string
	MovedAt            time.Time
	CreatedAt          time.Time
}

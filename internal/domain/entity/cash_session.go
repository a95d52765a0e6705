package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSessionStatus estado de un turno de caja.
type CashSessionStatus string

const (
	CashSessionOpen   CashSessionStatus = "open"
	CashSessionClosed CashSessionStatus = "closed"
)

// CashSession turno de caja de un usuario. Solo una abierta por usuario.
type CashSession struct {
	ID           string
	UserID       string
	OpenedAt     time.Time
	ClosedAt     *time.Time
	OpeningCash  decimal.Decimal
	ExpectedCash decimal.Decimal
	CountedCash  *decimal.Decimal
	Difference   *decimal.Decimal
	Status       CashSessionStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

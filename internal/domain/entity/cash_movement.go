package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashMovementType tipo de movimiento de caja.
type CashMovementType string

const (
	CashOpen       CashMovementType = "open"
	CashIncome     CashMovementType = "income"
	CashExpense    CashMovementType = "expense"
	CashWithdrawal CashMovementType = "withdrawal"
	CashRefund     CashMovementType = "refund"
	CashAdjust     CashMovementType = "adjust"
	CashSale       CashMovementType = "sale"
)

// Valid indica si el tipo es conocido.
func (t CashMovementType) Valid() bool {
	switch t {
	case CashOpen, CashIncome, CashExpense, CashWithdrawal, CashRefund, CashAdjust, CashSale:
		return true
	}
	return false
}

// CashMovement movimiento de caja (append-only). Amount con signo: salidas negativas.
type CashMovement struct {
	ID            string
	CashSessionID string
	Type          CashMovementType
	Amount        decimal.Decimal
	Description   string
	DocumentID    *string
	UserID        string
	CreatedAt     time.Time
}

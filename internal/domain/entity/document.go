package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y estados de documento de venta.
const (
	DocumentTypeSaleNote = "sale_note"

	DocumentIssued = "issued"
	DocumentVoided = "voided"
)

// PaymentMethod medio de pago del documento.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

// Valid indica si el medio de pago es conocido.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Document registro inmutable de venta (nota de venta). Number es monotónico por (Type, Series).
type Document struct {
	ID            string
	Type          string
	Series        string
	Number        int64
	IssueDate     time.Time
	Currency      string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        string
	CashSessionID *string
	UserID        string
	Meta          json.RawMessage
	Details       []DocumentDetail
	CreatedAt     time.Time
}

// FullNumber serie-número con ceros a la izquierda (NV01-00000012).
func (d *Document) FullNumber() string {
	return fmt.Sprintf("%s-%08d", d.Series, d.Number)
}

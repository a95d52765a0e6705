package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RentalStatus estado de un alquiler. closed y cancelled son terminales.
type RentalStatus string

const (
	RentalOpen      RentalStatus = "open"
	RentalClosed    RentalStatus = "closed"
	RentalCancelled RentalStatus = "cancelled"
)

// Rental una sesión de ocupación de una mesa.
type Rental struct {
	ID             string
	TableID        string
	StartedAt      time.Time
	EndedAt        *time.Time
	RatePerHour    decimal.Decimal
	AmountTime     decimal.Decimal
	Consumption    decimal.Decimal
	Discount       decimal.Decimal
	Surcharge      decimal.Decimal
	Total          decimal.Decimal
	Status         RentalStatus
	ElapsedSeconds int64
	OpenedBy       string
	ClosedBy       string
	DocumentID     *string
	Notes          string
	Meta           json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen indica si el alquiler aún admite cambios.
func (r *Rental) IsOpen() bool { return r.Status == RentalOpen }

// RecalcTotal total = tiempo + consumo - descuento + recargo, a 2 decimales.
func (r *Rental) RecalcTotal() {
	r.Total = r.AmountTime.Add(r.Consumption).Sub(r.Discount).Add(r.Surcharge).Round(2)
}

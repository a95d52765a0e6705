package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TableStatus estado físico de una mesa de billar.
type TableStatus string

const (
	TableAvailable  TableStatus = "available"
	TableInProgress TableStatus = "in_progress"
	TablePaused     TableStatus = "paused" // solo filas históricas; pausa deshabilitada
	TableCancelled  TableStatus = "cancelled"
)

// Table representa una mesa de billar. StartTime, EndTime, Amount y Consumption
// reflejan el alquiler abierto para lecturas rápidas.
type Table struct {
	ID          string
	Number      int
	Name        string
	TypeID      *string
	Status      TableStatus
	RatePerHour decimal.Decimal
	StartTime   *time.Time
	EndTime     *time.Time
	Amount      decimal.Decimal
	Consumption decimal.Decimal
	CoverImage  string // ruta en el blob store
	CoverURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResetSnapshot limpia los campos espejo del alquiler.
func (t *Table) ResetSnapshot() {
	t.StartTime = nil
	t.EndTime = nil
	t.Amount = decimal.Zero
	t.Consumption = decimal.Zero
}

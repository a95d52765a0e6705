package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesFilter rango y filtros del resumen de ventas.
type SalesFilter struct {
	From          time.Time
	To            time.Time
	CashSessionID string
	Currency      string
}

// SalesTotals totales de documentos emitidos.
type SalesTotals struct {
	TotalSales     decimal.Decimal
	DocumentsCount int
}

// PaymentMethodTotal ventas agrupadas por medio de pago.
type PaymentMethodTotal struct {
	PaymentMethod string          `db:"payment_method"`
	Total         decimal.Decimal `db:"total"`
	Count         int             `db:"count"`
}

// TopItem línea más vendida por descripción.
type TopItem struct {
	Description string          `db:"description"`
	TotalQty    decimal.Decimal `db:"total_qty"`
	TotalAmount decimal.Decimal `db:"total_amount"`
}

// AnalyticsRepository consultas de solo lectura sobre documentos.
type AnalyticsRepository interface {
	SalesTotals(ctx context.Context, f SalesFilter) (SalesTotals, error)
	SalesByPaymentMethod(ctx context.Context, f SalesFilter) ([]PaymentMethodTotal, error)
	TopItems(ctx context.Context, f SalesFilter, limit int) ([]TopItem, error)
}

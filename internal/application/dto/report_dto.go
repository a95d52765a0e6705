package dto

import "github.com/shopspring/decimal"

// SalesSummaryRequest filtros de GET /reports/sales-summary. Fechas YYYY-MM-DD.
type SalesSummaryRequest struct {
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	CashSessionID string `query:"cash_session_id" validate:"omitempty,uuid"`
	TopLimit      int    `query:"top" validate:"omitempty,min=1,max=50"`
}

// PaymentMethodSales ventas por medio de pago.
type PaymentMethodSales struct {
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Count         int             `json:"count"`
}

// TopItemSales línea más vendida.
type TopItemSales struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// SalesSummaryResponse resumen de ventas del rango.
type SalesSummaryResponse struct {
	From            string               `json:"from"`
	To              string               `json:"to"`
	Currency        string               `json:"currency"`
	TotalSales      decimal.Decimal      `json:"total_sales"`
	DocumentsCount  int                  `json:"documents_count"`
	AverageTicket   decimal.Decimal      `json:"average_ticket"`
	ByPaymentMethod []PaymentMethodSales `json:"by_payment_method"`
	TopItems        []TopItemSales       `json:"top_items"`
}

package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/pricing"
)

// RentalResponse salida de un alquiler.
type RentalResponse struct {
	ID             string          `json:"id"`
	TableID        string          `json:"table_id"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        *time.Time      `json:"ended_at,omitempty"`
	RatePerHour    decimal.Decimal `json:"rate_per_hour"`
	AmountTime     decimal.Decimal `json:"amount_time"`
	Consumption    decimal.Decimal `json:"consumption"`
	Discount       decimal.Decimal `json:"discount"`
	Surcharge      decimal.Decimal `json:"surcharge"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"`
	ElapsedSeconds int64           `json:"elapsed_seconds"`
	OpenedBy       string          `json:"opened_by"`
	ClosedBy       string          `json:"closed_by,omitempty"`
	DocumentID     *string         `json:"document_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Meta           json.RawMessage `json:"meta,omitempty"`
}

// QuoteResponse cotización de tiempo.
type QuoteResponse struct {
	ElapsedSeconds  int64           `json:"elapsed_seconds"`
	BillableMinutes int64           `json:"billable_minutes"`
	RatePerHour     decimal.Decimal `json:"rate_per_hour"`
	Amount          decimal.Decimal `json:"amount"`
}

// RentalDetailResponse alquiler con líneas y cotización.
type RentalDetailResponse struct {
	Rental RentalResponse       `json:"rental"`
	Items  []RentalItemResponse `json:"items"`
	Quote  QuoteResponse        `json:"quote"`
}

// RentalListResponse historial paginado.
type RentalListResponse struct {
	Items []RentalResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// UpdateRentalRequest cambios sobre un alquiler abierto.
type UpdateRentalRequest struct {
	Discount    *decimal.Decimal `json:"discount" validate:"omitempty,min=0"`
	Surcharge   *decimal.Decimal `json:"surcharge" validate:"omitempty,min=0"`
	RatePerHour *decimal.Decimal `json:"rate_per_hour" validate:"omitempty,min=0"`
	Notes       *string          `json:"notes" validate:"omitempty,max=500"`
}

// AddItemRequest línea de consumo.
type AddItemRequest struct {
	ProductID   string           `json:"product_id" validate:"omitempty,uuid"`
	ProductName string           `json:"product_name" validate:"omitempty,max=200"`
	UnitName    string           `json:"unit_name" validate:"omitempty,max=50"`
	Qty         decimal.Decimal  `json:"qty" validate:"gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
	Discount    decimal.Decimal  `json:"discount" validate:"min=0"`
	ClientOpID  string           `json:"client_op_id" validate:"omitempty,max=100"`
	WarehouseID string           `json:"warehouse_id" validate:"omitempty,uuid"`
}

// BulkItemsRequest varias líneas en una sola llamada.
type BulkItemsRequest struct {
	Items []AddItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateItemRequest cambios sobre una línea.
type UpdateItemRequest struct {
	Qty       *decimal.Decimal `json:"qty" validate:"omitempty,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
	Discount  *decimal.Decimal `json:"discount" validate:"omitempty,min=0"`
}

// VoidItemRequest motivo de anulación.
type VoidItemRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=300"`
}

// RentalItemResponse salida de una línea.
type RentalItemResponse struct {
	ID          string          `json:"id"`
	RentalID    string          `json:"rental_id"`
	ProductID   *string         `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitName    string          `json:"unit_name"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	ClientOpID  *string         `json:"client_op_id,omitempty"`
	WarehouseID *string         `json:"warehouse_id,omitempty"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	VoidReason  string          `json:"void_reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AddItemResponse salida de POST /rentals/:id/items.
type AddItemResponse struct {
	Item    *RentalItemResponse `json:"item"`
	Rental  RentalResponse      `json:"rental"`
	Created bool                `json:"created"`
}

// BulkItemsResponse salida de POST /rentals/:id/items/bulk.
type BulkItemsResponse struct {
	Rental  RentalResponse       `json:"rental"`
	Items   []RentalItemResponse `json:"items"`
	Created int                  `json:"created"`
	Skipped int                  `json:"skipped"`
}

// NewRentalResponse mapea la entidad.
func NewRentalResponse(r *entity.Rental) RentalResponse {
	return RentalResponse{
		ID:             r.ID,
		TableID:        r.TableID,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		RatePerHour:    r.RatePerHour,
		AmountTime:     r.AmountTime,
		Consumption:    r.Consumption,
		Discount:       r.Discount,
		Surcharge:      r.Surcharge,
		Total:          r.Total,
		Status:         string(r.Status),
		ElapsedSeconds: r.ElapsedSeconds,
		OpenedBy:       r.OpenedBy,
		ClosedBy:       r.ClosedBy,
		DocumentID:     r.DocumentID,
		Notes:          r.Notes,
		Meta:           r.Meta,
	}
}

// NewRentalItemResponse mapea la entidad.
func NewRentalItemResponse(i *entity.RentalItem) RentalItemResponse {
	return RentalItemResponse{
		ID:          i.ID,
		RentalID:    i.RentalID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		UnitName:    i.UnitName,
		Qty:         i.Qty,
		UnitPrice:   i.UnitPrice,
		Discount:    i.Discount,
		Total:       i.Total,
		Status:      string(i.Status),
		ClientOpID:  i.ClientOpID,
		WarehouseID: i.WarehouseID,
		VoidedAt:    i.VoidedAt,
		VoidReason:  i.VoidReason,
		CreatedAt:   i.CreatedAt,
	}
}

// NewRentalItemsResponse mapea una lista de líneas.
func NewRentalItemsResponse(items []*entity.RentalItem) []RentalItemResponse {
	out := make([]RentalItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewRentalItemResponse(it))
	}
	return out
}

// NewQuoteResponse mapea la cotización.
func NewQuoteResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		ElapsedSeconds:  q.ElapsedSeconds,
		BillableMinutes: q.BillableMinutes,
		RatePerHour:     q.RatePerHour,
		Amount:          q.Amount,
	}
}

// RentalQueryRequest filtros de GET /rentals.
type RentalQueryRequest struct {
	PageRequest
	Status  string `query:"status" validate:"omitempty,oneof=open closed cancelled"`
	TableID string `query:"table_id" validate:"omitempty,uuid"`
	From    string `query:"from"`
	To      string `query:"to"`
}

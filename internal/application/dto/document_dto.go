package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// FinishItemRequest línea explícita al liquidar.
type FinishItemRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	Qty         decimal.Decimal  `json:"qty" validate:"gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
	WarehouseID string           `json:"warehouse_id" validate:"omitempty,uuid"`
}

// FinishTableRequest entrada de POST /tables/:id/finish.
type FinishTableRequest struct {
	RentalID           string              `json:"rental_id" validate:"required,uuid"`
	PaymentMethod      string              `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	Items              []FinishItemRequest `json:"items" validate:"omitempty,dive"`
	Consumption        *decimal.Decimal    `json:"consumption" validate:"omitempty,min=0"`
	WarehouseID        string              `json:"warehouse_id" validate:"omitempty,uuid"`
	Discount           *decimal.Decimal    `json:"discount" validate:"omitempty,min=0"`
	Surcharge          *decimal.Decimal    `json:"surcharge" validate:"omitempty,min=0"`
	RatePerHour        *decimal.Decimal    `json:"rate_per_hour" validate:"omitempty,min=0"`
	AllowNegativeStock bool                `json:"allow_negative_stock"`
	Series             string              `json:"series" validate:"omitempty,max=10"`
	Notes              string              `json:"notes" validate:"omitempty,max=500"`
}

// FinishTableResponse salida de la liquidación.
type FinishTableResponse struct {
	Table    TableResponse    `json:"table"`
	Rental   RentalResponse   `json:"rental"`
	Document DocumentResponse `json:"document"`
}

// DocumentQueryRequest filtros de GET /documents.
type DocumentQueryRequest struct {
	PageRequest
	Series        string `query:"series" validate:"omitempty,max=10"`
	PaymentMethod string `query:"payment_method" validate:"omitempty,oneof=cash card transfer other"`
	CashSessionID string `query:"cash_session_id" validate:"omitempty,uuid"`
	From          string `query:"from"`
	To            string `query:"to"`
}

// DocumentDetailResponse línea del documento.
type DocumentDetailResponse struct {
	LineNo      int             `json:"line_no"`
	ProductID   *string         `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// DocumentResponse salida de un documento emitido.
type DocumentResponse struct {
	ID            string                   `json:"id"`
	Type          string                   `json:"type"`
	Series        string                   `json:"series"`
	Number        int64                    `json:"number"`
	FullNumber    string                   `json:"full_number"`
	IssueDate     time.Time                `json:"issue_date"`
	Currency      string                   `json:"currency"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	PaymentMethod string                   `json:"payment_method"`
	Status        string                   `json:"status"`
	CashSessionID *string                  `json:"cash_session_id,omitempty"`
	UserID        string                   `json:"user_id"`
	Meta          json.RawMessage          `json:"meta,omitempty"`
	Details       []DocumentDetailResponse `json:"details,omitempty"`
}

// DocumentListResponse lista paginada.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewDocumentResponse mapea la entidad con sus detalles.
func NewDocumentResponse(d *entity.Document) DocumentResponse {
	out := DocumentResponse{
		ID:            d.ID,
		Type:          d.Type,
		Series:        d.Series,
		Number:        d.Number,
		FullNumber:    d.FullNumber(),
		IssueDate:     d.IssueDate,
		Currency:      d.Currency,
		Subtotal:      d.Subtotal,
		Tax:           d.Tax,
		Total:         d.Total,
		PaymentMethod: string(d.PaymentMethod),
		Status:        d.Status,
		CashSessionID: d.CashSessionID,
		UserID:        d.UserID,
		Meta:          d.Meta,
	}
	for _, det := range d.Details {
		out.Details = append(out.Details, DocumentDetailResponse{
			LineNo:      det.LineNo,
			ProductID:   det.ProductID,
			Description: det.Description,
			Quantity:    det.Quantity,
			Unit:        det.Unit,
			UnitPrice:   det.UnitPrice,
			LineTotal:   det.LineTotal,
		})
	}
	return out
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// KardexMovementRequest registro manual: entrada, salida o ajuste.
type KardexMovementRequest struct {
	ProductID     string           `json:"product_id" validate:"required,uuid"`
	WarehouseID   string           `json:"warehouse_id" validate:"required,uuid"`
	Movement      string           `json:"movement" validate:"required,oneof=entrada salida ajuste"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"gt=0"`
	Direction     string           `json:"direction" validate:"omitempty,oneof=in out"`
	UnitCost      *decimal.Decimal `json:"unit_cost" validate:"omitempty,min=0"`
	AllowNegative bool             `json:"allow_negative"`
	Reference     string           `json:"reference" validate:"omitempty,max=100"`
	Description   string           `json:"description" validate:"omitempty,max=300"`
}

// TransferRequest traslado entre bodegas.
type TransferRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	FromWarehouseID string          `json:"from_warehouse_id" validate:"required,uuid"`
	ToWarehouseID   string          `json:"to_warehouse_id" validate:"required,uuid,nefield=FromWarehouseID"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
	AllowNegative   bool            `json:"allow_negative"`
	Description     string          `json:"description" validate:"omitempty,max=300"`
}

// KardexQueryRequest filtros de GET /kardex.
type KardexQueryRequest struct {
	PageRequest
	ProductID   string `query:"product_id" validate:"omitempty,uuid"`
	WarehouseID string `query:"warehouse_id" validate:"omitempty,uuid"`
	Movement    string `query:"movement" validate:"omitempty,oneof=entrada salida ajuste transfer_in transfer_out"`
	From        string `query:"from"`
	To          string `query:"to"`
}

// DocumentRefResponse referencia al documento de origen.
type DocumentRefResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// KardexEntryResponse salida de una fila del kardex.
type KardexEntryResponse struct {
	ID                 string               `json:"id"`
	ProductID          string               `json:"product_id"`
	WarehouseID        string               `json:"warehouse_id"`
	Movement           string               `json:"movement"`
	QuantityIn         decimal.Decimal      `json:"quantity_in"`
	QuantityOut        decimal.Decimal      `json:"quantity_out"`
	UnitCost           decimal.Decimal      `json:"unit_cost"`
	TotalCost          decimal.Decimal      `json:"total_cost"`
	BalanceQty         decimal.Decimal      `json:"balance_qty"`
	BalanceAvgUnitCost decimal.Decimal      `json:"balance_avg_unit_cost"`
	BalanceTotalCost   decimal.Decimal      `json:"balance_total_cost"`
	Reference          string               `json:"reference,omitempty"`
	Description        string               `json:"description,omitempty"`
	Document           *DocumentRefResponse `json:"document,omitempty"`
	UserID             string               `json:"user_id"`
	MovedAt            time.Time            `json:"moved_at"`
}

// KardexListResponse lista paginada.
type KardexListResponse struct {
	Items []KardexEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockResponse existencias por bodega.
type StockResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgUnitCost decimal.Decimal `json:"avg_unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewKardexEntryResponse mapea la entidad.
func NewKardexEntryResponse(e *entity.KardexEntry) KardexEntryResponse {
	out := KardexEntryResponse{
		ID:                 e.ID,
		ProductID:          e.ProductID,
		WarehouseID:        e.WarehouseID,
		Movement:           string(e.Movement),
		QuantityIn:         e.QuantityIn,
		QuantityOut:        e.QuantityOut,
		UnitCost:           e.UnitCost,
		TotalCost:          e.TotalCost,
		BalanceQty:         e.BalanceQty,
		BalanceAvgUnitCost: e.BalanceAvgUnitCost,
		BalanceTotalCost:   e.BalanceTotalCost,
		Reference:          e.Reference,
		Description:        e.Description,
		UserID:             e.UserID,
		MovedAt:            e.MovedAt,
	}
	if e.Document != nil {
		out.Document = &DocumentRefResponse{Kind: string(e.Document.Kind), ID: e.Document.ID}
	}
	return out
}

// NewKardexEntriesResponse mapea una lista.
func NewKardexEntriesResponse(entries []*entity.KardexEntry) []KardexEntryResponse {
	out := make([]KardexEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewKardexEntryResponse(e))
	}
	return out
}

// NewStockResponse mapea la entidad.
func NewStockResponse(s *entity.Stock) StockResponse {
	return StockResponse{
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		AvgUnitCost: s.AvgUnitCost,
		TotalCost:   s.TotalCost(),
		UpdatedAt:   s.UpdatedAt,
	}
}

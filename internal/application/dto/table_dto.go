package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// CreateTableRequest entrada para crear una mesa.
type CreateTableRequest struct {
	Number      int             `json:"number" validate:"required,min=1"`
	Name        string          `json:"name" validate:"omitempty,max=100"`
	TypeID      *string         `json:"type_id" validate:"omitempty,uuid"`
	RatePerHour decimal.Decimal `json:"rate_per_hour" validate:"min=0"`
}

// UpdateTableRequest entrada para actualizar una mesa.
type UpdateTableRequest struct {
	Number      *int             `json:"number" validate:"omitempty,min=1"`
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	TypeID      *string          `json:"type_id" validate:"omitempty,uuid"`
	RatePerHour *decimal.Decimal `json:"rate_per_hour" validate:"omitempty,min=0"`
}

// TableResponse salida de una mesa con su snapshot del alquiler abierto.
type TableResponse struct {
	ID          string          `json:"id"`
	Number      int             `json:"number"`
	Name        string          `json:"name"`
	TypeID      *string         `json:"type_id,omitempty"`
	Status      string          `json:"status"`
	RatePerHour decimal.Decimal `json:"rate_per_hour"`
	StartTime   *time.Time      `json:"start_time,omitempty"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Consumption decimal.Decimal `json:"consumption"`
	CoverURL    string          `json:"cover_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableListResponse lista de mesas.
type TableListResponse struct {
	Items []TableResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// StartTableResponse salida de POST /tables/:id/start.
type StartTableResponse struct {
	Table   TableResponse  `json:"table"`
	Rental  RentalResponse `json:"rental"`
	Created bool           `json:"created"`
}

// TableStateResponse salida de cancel.
type TableStateResponse struct {
	Table TableResponse `json:"table"`
}

// NewTableResponse mapea la entidad.
func NewTableResponse(t *entity.Table) TableResponse {
	return TableResponse{
		ID:          t.ID,
		Number:      t.Number,
		Name:        t.Name,
		TypeID:      t.TypeID,
		Status:      string(t.Status),
		RatePerHour: t.RatePerHour,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Amount:      t.Amount,
		Consumption: t.Consumption,
		CoverURL:    t.CoverURL,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

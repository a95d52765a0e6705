package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=200"`
	UnitName    string          `json:"unit_name" validate:"omitempty,max=50"`
	SalePrice   decimal.Decimal `json:"sale_price" validate:"min=0"`
	DefaultCost decimal.Decimal `json:"default_cost" validate:"min=0"`
}

// UpdateProductRequest entrada parcial para actualizar un producto.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	UnitName    *string          `json:"unit_name" validate:"omitempty,max=50"`
	SalePrice   *decimal.Decimal `json:"sale_price" validate:"omitempty,min=0"`
	DefaultCost *decimal.Decimal `json:"default_cost" validate:"omitempty,min=0"`
	Active      *bool            `json:"active"`
}

// ProductQueryRequest filtros de GET /products.
type ProductQueryRequest struct {
	PageRequest
	Search     string `query:"search" validate:"omitempty,max=100"`
	OnlyActive bool   `query:"only_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	UnitName    string          `json:"unit_name"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	DefaultCost decimal.Decimal `json:"default_cost"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Address   string `json:"address" validate:"omitempty,max=300"`
	IsDefault bool   `json:"is_default"`
}

// UpdateWarehouseRequest entrada parcial.
type UpdateWarehouseRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	IsDefault *bool   `json:"is_default"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

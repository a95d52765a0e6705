package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// WarehouseRepository puerto de persistencia para bodegas.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, page Page) ([]*entity.Warehouse, error)
}

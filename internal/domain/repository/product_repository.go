package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// ProductRepository puerto de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, q ProductQuery) ([]*entity.Product, error)
}

package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// StockRepository puerto de persistencia para existencias por bodega.
type StockRepository interface {
	// Get devuelve nil si la fila no existe.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila; nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// CreateIfMissing inserta la fila en cero si no existe (ON CONFLICT DO NOTHING).
	CreateIfMissing(ctx context.Context, stock *entity.Stock) error
	Update(ctx context.Context, stock *entity.Stock) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
}

package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// TableRepository puerto de persistencia para mesas.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type TableRepository interface {
	Create(ctx context.Context, table *entity.Table) error
	GetByID(ctx context.Context, id string) (*entity.Table, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Table, error)
	Update(ctx context.Context, table *entity.Table) error
	List(ctx context.Context, q TableQuery) ([]*entity.Table, error)
}

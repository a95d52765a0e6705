package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// RentalRepository puerto de persistencia para alquileres de mesa.
type RentalRepository interface {
	Create(ctx context.Context, rental *entity.Rental) error
	GetByID(ctx context.Context, id string) (*entity.Rental, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Rental, error)
	// FindOpenByTableForUpdate devuelve el alquiler abierto de la mesa, bloqueado; nil si no hay.
	FindOpenByTableForUpdate(ctx context.Context, tableID string) (*entity.Rental, error)
	Update(ctx context.Context, rental *entity.Rental) error
	List(ctx context.Context, q RentalQuery) ([]*entity.Rental, int, error)
}

// RentalItemRepository puerto de persistencia para líneas de consumo.
type RentalItemRepository interface {
	Create(ctx context.Context, item *entity.RentalItem) error
	GetByID(ctx context.Context, id string) (*entity.RentalItem, error)
	Update(ctx context.Context, item *entity.RentalItem) error
	ListByRental(ctx context.Context, rentalID string, includeVoided bool) ([]*entity.RentalItem, error)
	ExistsClientOp(ctx context.Context, rentalID, clientOpID string) (bool, error)
}

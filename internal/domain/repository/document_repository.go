package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// DocumentRepository puerto de persistencia para documentos de venta.
type DocumentRepository interface {
	// NextNumber reserva max(number)+1 para (docType, series) bloqueando el contador hasta el commit.
	NextNumber(ctx context.Context, docType, series string) (int64, error)
	// Create inserta la cabecera y sus detalles.
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, q DocumentQuery) ([]*entity.Document, int, error)
}

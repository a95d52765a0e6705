package ports

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// SaleNotePDFGenerator genera la representación impresa de una nota de venta.
type SaleNotePDFGenerator interface {
	GenerateSaleNotePDF(ctx context.Context, doc *entity.Document, businessName string) ([]byte, error)
}

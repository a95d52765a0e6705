package billing

import (
	"context"

	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// StockRecorder integra la liquidación con el kardex.
// RecordInTx aplica la salida con los repositorios del caller (misma transacción);
// si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockRecorder interface {
	RecordInTx(ctx context.Context, r repository.Repos, m inventory.Movement) (*entity.KardexEntry, error)
}

// CashRecorder integra la liquidación con la caja del principal.
type CashRecorder interface {
	OpenSessionInTx(ctx context.Context, r repository.Repos, p ports.Principal) (*entity.CashSession, error)
	RecordSaleInTx(ctx context.Context, r repository.Repos, p ports.Principal, doc *entity.Document, description string) (*entity.CashMovement, error)
}

// DocumentEmitter numeración y alta de la nota de venta.
type DocumentEmitter interface {
	AllocateInTx(ctx context.Context, r repository.Repos, docType, series string) (int64, error)
	CreateWithDetailsInTx(ctx context.Context, r repository.Repos, doc *entity.Document) error
}

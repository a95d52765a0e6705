// Package document emite y consulta notas de venta.
package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// Emitter numera y persiste documentos dentro de la transacción del caller.
type Emitter struct {
	tx           ports.TxRunner
	pdf          ports.SaleNotePDFGenerator
	businessName string
}

// NewEmitter construye el emisor. pdf puede ser nil si no se sirve el ticket.
func NewEmitter(tx ports.TxRunner, pdf ports.SaleNotePDFGenerator, businessName string) *Emitter {
	return &Emitter{tx: tx, pdf: pdf, businessName: businessName}
}

// AllocateInTx reserva el siguiente número de (docType, series). El contador queda bloqueado
// hasta el commit; un rollback no consume el número.
func (e *Emitter) AllocateInTx(ctx context.Context, r repository.Repos, docType, series string) (int64, error) {
	if series == "" {
		return 0, domain.NewValidation("series", "requerida")
	}
	n, err := r.Documents.NextNumber(ctx, docType, series)
	if err != nil {
		return 0, fmt.Errorf("numerar %s %s: %w", docType, series, err)
	}
	return n, nil
}

// CreateWithDetailsInTx inserta cabecera y detalles; asigna ids y número de línea.
func (e *Emitter) CreateWithDetailsInTx(ctx context.Context, r repository.Repos, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Number <= 0 {
		return domain.NewValidation("number", "documento sin numerar")
	}
	for i := range doc.Details {
		d := &doc.Details[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.DocumentID = doc.ID
		d.LineNo = i + 1
	}
	if err := r.Documents.Create(ctx, doc); err != nil {
		return fmt.Errorf("crear documento %s: %w", doc.FullNumber(), err)
	}
	return nil
}

// Get documento con detalles.
func (e *Emitter) Get(ctx context.Context, id string) (*entity.Document, error) {
	var doc *entity.Document
	err := e.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		doc, err = r.Documents.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.NewNotFound("documento", id)
		}
		return nil
	})
	return doc, err
}

// List documentos filtrados, más recientes primero.
func (e *Emitter) List(ctx context.Context, q repository.DocumentQuery) ([]*entity.Document, int, error) {
	if q.PaymentMethod != nil && !q.PaymentMethod.Valid() {
		return nil, 0, domain.NewValidation("payment_method", "medio de pago inválido")
	}
	var (
		list  []*entity.Document
		total int
	)
	err := e.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, total, err = r.Documents.List(ctx, q)
		return err
	})
	return list, total, err
}

// RenderPDF ticket de la nota de venta.
func (e *Emitter) RenderPDF(ctx context.Context, id string) ([]byte, *entity.Document, error) {
	if e.pdf == nil {
		return nil, nil, domain.ErrFeatureDisabled
	}
	doc, err := e.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := e.pdf.GenerateSaleNotePDF(ctx, doc, e.businessName)
	if err != nil {
		return nil, nil, fmt.Errorf("generar pdf %s: %w", doc.FullNumber(), err)
	}
	return pdf, doc, nil
}

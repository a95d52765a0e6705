package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

var documentColumns = []string{
	"id", "type", "series", "number", "issue_date", "currency", "subtotal", "tax", "total",
	"payment_method", "status", "cash_session_id", "user_id", "meta", "created_at",
}

// DocumentRepo documentos de venta y su contador por (tipo, serie).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// NextNumber incrementa el contador de (docType, series). La fila del contador queda bloqueada
// hasta el fin de la transacción, así que un rollback no consume el número.
// El primer uso se siembra con el máximo número existente.
func (r *DocumentRepo) NextNumber(ctx context.Context, docType, series string) (int64, error) {
	const query = `
		INSERT INTO document_sequences (doc_type, series, last_number)
		VALUES ($1, $2, COALESCE((SELECT MAX(number) FROM documents WHERE type = $1 AND series = $2), 0) + 1)
		ON CONFLICT (doc_type, series)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, docType, series).Scan(&n); err != nil {
		return 0, fmt.Errorf("next document number: %w", err)
	}
	return n, nil
}

// Create inserta cabecera y detalles.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	sql, args, err := psql.Insert("documents").Columns(documentColumns...).Values(
		d.ID, d.Type, d.Series, d.Number, d.IssueDate, d.Currency, d.Subtotal, d.Tax, d.Total,
		d.PaymentMethod, d.Status, d.CashSessionID, d.UserID, d.Meta, d.CreatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	if len(d.Details) == 0 {
		return nil
	}
	ins := psql.Insert("document_details").Columns("id", "document_id", "line_no", "product_id", "description", "quantity", "unit", "unit_price", "line_total")
	for _, det := range d.Details {
		ins = ins.Values(det.ID, d.ID, det.LineNo, det.ProductID, det.Description, det.Quantity, det.Unit, det.UnitPrice, det.LineTotal)
	}
	detSQL, detArgs, err := ins.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, detSQL, detArgs...); err != nil {
		return fmt.Errorf("insert document details: %w", err)
	}
	return nil
}

func scanDocument(row scanner) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(&d.ID, &d.Type, &d.Series, &d.Number, &d.IssueDate, &d.Currency, &d.Subtotal, &d.Tax, &d.Total,
		&d.PaymentMethod, &d.Status, &d.CashSessionID, &d.UserID, &d.Meta, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID cabecera con detalles; nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	sql, args, err := psql.Select(documentColumns...).From("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	d, err := scanDocument(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, line_no, product_id, description, quantity, unit, unit_price, line_total
		FROM document_details WHERE document_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("get document details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var det entity.DocumentDetail
		if err := rows.Scan(&det.ID, &det.DocumentID, &det.LineNo, &det.ProductID, &det.Description,
			&det.Quantity, &det.Unit, &det.UnitPrice, &det.LineTotal); err != nil {
			return nil, err
		}
		d.Details = append(d.Details, det)
	}
	return d, rows.Err()
}

// List cabeceras sin detalles, más reciente primero.
func (r *DocumentRepo) List(ctx context.Context, q repository.DocumentQuery) ([]*entity.Document, int, error) {
	page := q.Page.Normalize()
	where := sq.And{}
	if q.Series != "" {
		where = append(where, sq.Eq{"series": q.Series})
	}
	if q.PaymentMethod != nil {
		where = append(where, sq.Eq{"payment_method": *q.PaymentMethod})
	}
	if q.CashSessionID != "" {
		where = append(where, sq.Eq{"cash_session_id": q.CashSessionID})
	}
	if q.From != nil {
		where = append(where, sq.GtOrEq{"issue_date": *q.From})
	}
	if q.To != nil {
		where = append(where, sq.LtOrEq{"issue_date": *q.To})
	}
	rows, total, err := countAndSelect(ctx, r.q,
		psql.Select("COUNT(*)").From("documents").Where(where),
		psql.Select(documentColumns...).From("documents").Where(where).
			OrderBy("issue_date DESC", "number DESC").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

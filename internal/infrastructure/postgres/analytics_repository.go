package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre documentos emitidos.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// salesWhere filtro común: documentos emitidos del rango, sesión y moneda opcionales.
func salesWhere(f repository.SalesFilter, alias string) sq.And {
	col := func(c string) string { return alias + "." + c }
	where := sq.And{sq.Eq{col("status"): entity.DocumentIssued}}
	if !f.From.IsZero() {
		where = append(where, sq.GtOrEq{col("issue_date"): f.From})
	}
	if !f.To.IsZero() {
		where = append(where, sq.LtOrEq{col("issue_date"): f.To})
	}
	if f.CashSessionID != "" {
		where = append(where, sq.Eq{col("cash_session_id"): f.CashSessionID})
	}
	if f.Currency != "" {
		where = append(where, sq.Eq{col("currency"): f.Currency})
	}
	return where
}

// SalesTotals total vendido y cantidad de documentos. COALESCE devuelve cero sin ventas.
func (r *AnalyticsRepo) SalesTotals(ctx context.Context, f repository.SalesFilter) (repository.SalesTotals, error) {
	sql, args, err := psql.Select("COALESCE(SUM(d.total), 0) AS total_sales", "COUNT(*) AS documents_count").
		From("documents d").Where(salesWhere(f, "d")).ToSql()
	if err != nil {
		return repository.SalesTotals{}, err
	}
	var row struct {
		TotalSales     decimal.Decimal `db:"total_sales"`
		DocumentsCount int             `db:"documents_count"`
	}
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		return repository.SalesTotals{}, fmt.Errorf("analytics.SalesTotals: %w", err)
	}
	return repository.SalesTotals{TotalSales: row.TotalSales, DocumentsCount: row.DocumentsCount}, nil
}

// SalesByPaymentMethod agrupa por medio de pago, mayor total primero.
func (r *AnalyticsRepo) SalesByPaymentMethod(ctx context.Context, f repository.SalesFilter) ([]repository.PaymentMethodTotal, error) {
	sql, args, err := psql.Select("d.payment_method", "SUM(d.total) AS total", "COUNT(*) AS count").
		From("documents d").Where(salesWhere(f, "d")).
		GroupBy("d.payment_method").OrderBy("total DESC").ToSql()
	if err != nil {
		return nil, err
	}
	out := []repository.PaymentMethodTotal{}
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("analytics.SalesByPaymentMethod: %w", err)
	}
	return out, nil
}

// TopItems líneas más vendidas por descripción.
func (r *AnalyticsRepo) TopItems(ctx context.Context, f repository.SalesFilter, limit int) ([]repository.TopItem, error) {
	sql, args, err := psql.Select("dd.description", "SUM(dd.quantity) AS total_qty", "SUM(dd.line_total) AS total_amount").
		From("document_details dd").Join("documents d ON d.id = dd.document_id").
		Where(salesWhere(f, "d")).
		GroupBy("dd.description").OrderBy("total_amount DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}
	out := []repository.TopItem{}
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("analytics.TopItems: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

var kardexColumns = []string{
	"id", "product_id", "warehouse_id", "movement", "quantity_in", "quantity_out", "unit_cost", "total_cost",
	"balance_qty", "balance_avg_unit_cost", "balance_total_cost", "reference", "description",
	"document_kind", "document_id", "user_id", "moved_at", "created_at",
}

// KardexRepo ledger append-only sobre PostgreSQL.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador.
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

// Create inserta una fila del kardex.
func (r *KardexRepo) Create(ctx context.Context, e *entity.KardexEntry) error {
	var docKind, docID any
	if e.Document != nil {
		docKind, docID = string(e.Document.Kind), e.Document.ID
	}
	sql, args, err := psql.Insert("kardex_entries").Columns(kardexColumns...).Values(
		e.ID, e.ProductID, e.WarehouseID, e.Movement, e.QuantityIn, e.QuantityOut, e.UnitCost, e.TotalCost,
		e.BalanceQty, e.BalanceAvgUnitCost, e.BalanceTotalCost, e.Reference, e.Description,
		docKind, docID, nullIfEmpty(e.UserID), e.MovedAt, e.CreatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert kardex: %w", err)
	}
	return nil
}

// List kardex filtrado, en orden cronológico.
func (r *KardexRepo) List(ctx context.Context, q repository.KardexQuery) ([]*entity.KardexEntry, int, error) {
	page := q.Page.Normalize()
	where := sq.And{}
	if q.ProductID != "" {
		where = append(where, sq.Eq{"product_id": q.ProductID})
	}
	if q.WarehouseID != "" {
		where = append(where, sq.Eq{"warehouse_id": q.WarehouseID})
	}
	if q.Movement != nil {
		where = append(where, sq.Eq{"movement": *q.Movement})
	}
	if q.From != nil {
		where = append(where, sq.GtOrEq{"moved_at": *q.From})
	}
	if q.To != nil {
		where = append(where, sq.LtOrEq{"moved_at": *q.To})
	}
	rows, total, err := countAndSelect(ctx, r.q,
		psql.Select("COUNT(*)").From("kardex_entries").Where(where),
		psql.Select(kardexColumns...).From("kardex_entries").Where(where).
			OrderBy("moved_at", "created_at", "id").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()
	var out []*entity.KardexEntry
	for rows.Next() {
		var e entity.KardexEntry
		var docKind, docID, userID *string
		if err := rows.Scan(&e.ID, &e.ProductID, &e.WarehouseID, &e.Movement, &e.QuantityIn, &e.QuantityOut,
			&e.UnitCost, &e.TotalCost, &e.BalanceQty, &e.BalanceAvgUnitCost, &e.BalanceTotalCost,
			&e.Reference, &e.Description, &docKind, &docID, &userID, &e.MovedAt, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if docKind != nil && docID != nil {
			e.Document = &entity.DocumentRef{Kind: entity.DocumentKind(*docKind), ID: *docID}
		}
		e.UserID = deref(userID)
		out = append(out, &e)
	}
	return out, total, rows.Err()
}

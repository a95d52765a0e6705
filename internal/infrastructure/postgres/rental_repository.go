package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var (
	_ repository.RentalRepository     = (*RentalRepo)(nil)
	_ repository.RentalItemRepository = (*RentalItemRepo)(nil)
)

var rentalColumns = []string{
	"id", "table_id", "started_at", "ended_at", "rate_per_hour", "amount_time", "consumption",
	"discount", "surcharge", "total", "status", "elapsed_seconds", "opened_by", "closed_by",
	"document_id", "notes", "meta", "created_at", "updated_at",
}

// RentalRepo alquileres sobre PostgreSQL. Un índice único parcial garantiza un solo alquiler abierto por mesa.
type RentalRepo struct {
	q Querier
}

// NewRentalRepository construye el adaptador.
func NewRentalRepository(q Querier) *RentalRepo {
	return &RentalRepo{q: q}
}

func scanRental(row scanner) (*entity.Rental, error) {
	var rt entity.Rental
	var closedBy *string
	err := row.Scan(&rt.ID, &rt.TableID, &rt.StartedAt, &rt.EndedAt, &rt.RatePerHour, &rt.AmountTime, &rt.Consumption,
		&rt.Discount, &rt.Surcharge, &rt.Total, &rt.Status, &rt.ElapsedSeconds, &rt.OpenedBy, &closedBy,
		&rt.DocumentID, &rt.Notes, &rt.Meta, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt.ClosedBy = deref(closedBy)
	return &rt, nil
}

// Create inserta el alquiler. Otro abierto en la misma mesa → ErrConflict.
func (r *RentalRepo) Create(ctx context.Context, rt *entity.Rental) error {
	sql, args, err := psql.Insert("rentals").Columns(rentalColumns...).Values(
		rt.ID, rt.TableID, rt.StartedAt, rt.EndedAt, rt.RatePerHour, rt.AmountTime, rt.Consumption,
		rt.Discount, rt.Surcharge, rt.Total, rt.Status, rt.ElapsedSeconds, rt.OpenedBy, nullIfEmpty(rt.ClosedBy),
		rt.DocumentID, rt.Notes, rt.Meta, rt.CreatedAt, rt.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflict("la mesa ya tiene un alquiler abierto")
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

// GetByID nil si no existe.
func (r *RentalRepo) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, "")
}

// GetForUpdate bloquea la fila.
func (r *RentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, "FOR UPDATE")
}

// FindOpenByTableForUpdate alquiler abierto de la mesa, bloqueado.
func (r *RentalRepo) FindOpenByTableForUpdate(ctx context.Context, tableID string) (*entity.Rental, error) {
	return r.getOne(ctx, sq.Eq{"table_id": tableID, "status": entity.RentalOpen}, "FOR UPDATE")
}

func (r *RentalRepo) getOne(ctx context.Context, where sq.Eq, suffix string) (*entity.Rental, error) {
	b := psql.Select(rentalColumns...).From("rentals").Where(where).Limit(1)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rt, err := scanRental(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rental: %w", err)
	}
	return rt, nil
}

// Update reescribe los campos mutables.
func (r *RentalRepo) Update(ctx context.Context, rt *entity.Rental) error {
	sql, args, err := psql.Update("rentals").SetMap(map[string]any{
		"ended_at":        rt.EndedAt,
		"rate_per_hour":   rt.RatePerHour,
		"amount_time":     rt.AmountTime,
		"consumption":     rt.Consumption,
		"discount":        rt.Discount,
		"surcharge":       rt.Surcharge,
		"total":           rt.Total,
		"status":          rt.Status,
		"elapsed_seconds": rt.ElapsedSeconds,
		"closed_by":       nullIfEmpty(rt.ClosedBy),
		"document_id":     rt.DocumentID,
		"notes":           rt.Notes,
		"meta":            rt.Meta,
		"updated_at":      rt.UpdatedAt,
	}).Where(sq.Eq{"id": rt.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List historial con filtros, más reciente primero.
func (r *RentalRepo) List(ctx context.Context, q repository.RentalQuery) ([]*entity.Rental, int, error) {
	page := q.Page.Normalize()
	where := sq.And{}
	if q.Status != nil {
		where = append(where, sq.Eq{"status": *q.Status})
	}
	if q.TableID != "" {
		where = append(where, sq.Eq{"table_id": q.TableID})
	}
	if q.From != nil {
		where = append(where, sq.GtOrEq{"started_at": *q.From})
	}
	if q.To != nil {
		where = append(where, sq.LtOrEq{"started_at": *q.To})
	}
	rows, total, err := countAndSelect(ctx, r.q,
		psql.Select("COUNT(*)").From("rentals").Where(where),
		psql.Select(rentalColumns...).From("rentals").Where(where).
			OrderBy("started_at DESC").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()
	var out []*entity.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rt)
	}
	return out, total, rows.Err()
}

var rentalItemColumns = []string{
	"id", "rental_id", "product_id", "product_name", "unit_name", "qty", "unit_price", "discount", "total",
	"status", "client_op_id", "warehouse_id", "created_by", "voided_at", "void_reason", "created_at", "updated_at",
}

// RentalItemRepo líneas de consumo. (rental_id, client_op_id) es único.
type RentalItemRepo struct {
	q Querier
}

// NewRentalItemRepository construye el adaptador.
func NewRentalItemRepository(q Querier) *RentalItemRepo {
	return &RentalItemRepo{q: q}
}

func scanRentalItem(row scanner) (*entity.RentalItem, error) {
	var it entity.RentalItem
	err := row.Scan(&it.ID, &it.RentalID, &it.ProductID, &it.ProductName, &it.UnitName, &it.Qty, &it.UnitPrice,
		&it.Discount, &it.Total, &it.Status, &it.ClientOpID, &it.WarehouseID, &it.CreatedBy, &it.VoidedAt,
		&it.VoidReason, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta la línea. client_op_id repetido → ErrDuplicate.
func (r *RentalItemRepo) Create(ctx context.Context, it *entity.RentalItem) error {
	sql, args, err := psql.Insert("rental_items").Columns(rentalItemColumns...).Values(
		it.ID, it.RentalID, it.ProductID, it.ProductName, it.UnitName, it.Qty, it.UnitPrice, it.Discount, it.Total,
		it.Status, it.ClientOpID, it.WarehouseID, it.CreatedBy, it.VoidedAt, it.VoidReason, it.CreatedAt, it.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert rental item: %w", err)
	}
	return nil
}

// GetByID nil si no existe.
func (r *RentalItemRepo) GetByID(ctx context.Context, id string) (*entity.RentalItem, error) {
	sql, args, err := psql.Select(rentalItemColumns...).From("rental_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	it, err := scanRentalItem(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rental item: %w", err)
	}
	return it, nil
}

// Update reescribe cantidades, estado y anulación.
func (r *RentalItemRepo) Update(ctx context.Context, it *entity.RentalItem) error {
	sql, args, err := psql.Update("rental_items").SetMap(map[string]any{
		"qty":         it.Qty,
		"unit_price":  it.UnitPrice,
		"discount":    it.Discount,
		"total":       it.Total,
		"status":      it.Status,
		"voided_at":   it.VoidedAt,
		"void_reason": it.VoidReason,
		"updated_at":  it.UpdatedAt,
	}).Where(sq.Eq{"id": it.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update rental item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRental líneas en orden de creación.
func (r *RentalItemRepo) ListByRental(ctx context.Context, rentalID string, includeVoided bool) ([]*entity.RentalItem, error) {
	b := psql.Select(rentalItemColumns...).From("rental_items").Where(sq.Eq{"rental_id": rentalID}).OrderBy("created_at", "id")
	if !includeVoided {
		b = b.Where(sq.Eq{"status": entity.ItemOK})
	}
	rows, err := queryRows(ctx, r.q, b)
	if err != nil {
		return nil, fmt.Errorf("list rental items: %w", err)
	}
	defer rows.Close()
	out := []*entity.RentalItem{}
	for rows.Next() {
		it, err := scanRentalItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ExistsClientOp indica si la operación del cliente ya se registró en el alquiler.
func (r *RentalItemRepo) ExistsClientOp(ctx context.Context, rentalID, clientOpID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rental_items WHERE rental_id = $1 AND client_op_id = $2)`,
		rentalID, clientOpID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists client op: %w", err)
	}
	return exists, nil
}

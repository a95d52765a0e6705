package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

var warehouseColumns = []string{"id", "name", "address", "is_default", "created_at", "updated_at"}

// WarehouseRepo implementación de WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func scanWarehouse(row scanner) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.Name, &w.Address, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persiste una bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	sql, args, err := psql.Insert("warehouses").Columns(warehouseColumns...).
		Values(w.ID, w.Name, w.Address, w.IsDefault, w.CreatedAt, w.UpdatedAt).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	sql, args, err := psql.Select(warehouseColumns...).From("warehouses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	w, err := scanWarehouse(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// Update actualiza nombre, dirección y marca de principal.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	sql, args, err := psql.Update("warehouses").SetMap(map[string]any{
		"name":       w.Name,
		"address":    w.Address,
		"is_default": w.IsDefault,
		"updated_at": w.UpdatedAt,
	}).Where(sq.Eq{"id": w.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List bodegas por nombre.
func (r *WarehouseRepo) List(ctx context.Context, page repository.Page) ([]*entity.Warehouse, error) {
	page = page.Normalize()
	rows, err := queryRows(ctx, r.q, psql.Select(warehouseColumns...).From("warehouses").
		OrderBy("name").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)))
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var out []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockSelect = `
		SELECT product_id, warehouse_id, quantity, avg_unit_cost, updated_at
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2`

func scanStock(row scanner) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.AvgUnitCost, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto en una bodega; nil si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, stockSelect, productID, warehouseID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, stockSelect+" FOR UPDATE", productID, warehouseID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// CreateIfMissing inserta la fila en cero; si ya existe no hace nada.
func (r *StockRepo) CreateIfMissing(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stocks (product_id, warehouse_id, quantity, avg_unit_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, s.ProductID, s.WarehouseID, s.Quantity, s.AvgUnitCost, s.UpdatedAt); err != nil {
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// Update guarda cantidad y costo promedio.
func (r *StockRepo) Update(ctx context.Context, s *entity.Stock) error {
	query := `
		UPDATE stocks SET quantity = $3, avg_unit_cost = $4, updated_at = $5
		WHERE product_id = $1 AND warehouse_id = $2`
	tag, err := r.q.Exec(ctx, query, s.ProductID, s.WarehouseID, s.Quantity, s.AvgUnitCost, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct existencias del producto en todas las bodegas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, quantity, avg_unit_cost, updated_at
		FROM stocks WHERE product_id = $1 ORDER BY warehouse_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	out := []*entity.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

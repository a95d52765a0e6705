package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{"id", "sku", "name", "unit_name", "sale_price", "default_cost", "active", "created_at", "updated_at"}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.UnitName, &p.SalePrice, &p.DefaultCost, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	sql, args, err := psql.Insert("products").Columns(productColumns...).
		Values(p.ID, p.SKU, p.Name, p.UnitName, p.SalePrice, p.DefaultCost, p.Active, p.CreatedAt, p.UpdatedAt).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, sq.Eq{"sku": sku})
}

func (r *ProductRepo) getOne(ctx context.Context, where sq.Eq) (*entity.Product, error) {
	sql, args, err := psql.Select(productColumns...).From("products").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza datos de catálogo.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	sql, args, err := psql.Update("products").SetMap(map[string]any{
		"name":         p.Name,
		"unit_name":    p.UnitName,
		"sale_price":   p.SalePrice,
		"default_cost": p.DefaultCost,
		"active":       p.Active,
		"updated_at":   p.UpdatedAt,
	}).Where(sq.Eq{"id": p.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List productos por nombre con búsqueda ILIKE en nombre o SKU.
func (r *ProductRepo) List(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	page := q.Page.Normalize()
	b := psql.Select(productColumns...).From("products").OrderBy("name").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset))
	if q.OnlyActive {
		b = b.Where(sq.Eq{"active": true})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		b = b.Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"sku": pattern}})
	}
	rows, err := queryRows(ctx, r.q, b)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

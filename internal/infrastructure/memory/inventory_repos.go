package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*productRepo)(nil)
	_ repository.WarehouseRepository = (*warehouseRepo)(nil)
	_ repository.StockRepository     = (*stockRepo)(nil)
	_ repository.KardexRepository    = (*kardexRepo)(nil)
)

type productRepo struct{ s *state }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	for _, other := range r.s.products {
		if p.SKU != "" && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) List(_ context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	var out []*entity.Product
	search := strings.ToLower(q.Search)
	for _, p := range r.s.products {
		if q.OnlyActive && !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	page, _ := paginate(out, q.Page)
	return page, nil
}

type warehouseRepo struct{ s *state }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.s.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) List(_ context.Context, p repository.Page) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		w := w
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	page, _ := paginate(out, p)
	return page, nil
}

type stockRepo struct{ s *state }

func (r *stockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	st, ok := r.s.stocks[stockKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *stockRepo) CreateIfMissing(_ context.Context, st *entity.Stock) error {
	key := stockKey{st.ProductID, st.WarehouseID}
	if _, ok := r.s.stocks[key]; !ok {
		r.s.stocks[key] = *st
	}
	return nil
}

func (r *stockRepo) Update(_ context.Context, st *entity.Stock) error {
	key := stockKey{st.ProductID, st.WarehouseID}
	if _, ok := r.s.stocks[key]; !ok {
		return domain.ErrNotFound
	}
	r.s.stocks[key] = *st
	return nil
}

func (r *stockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Stock, error) {
	out := []*entity.Stock{}
	for k, st := range r.s.stocks {
		if k.product == productID {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

type kardexRepo struct{ s *state }

func (r *kardexRepo) Create(_ context.Context, e *entity.KardexEntry) error {
	r.s.kardex = append(r.s.kardex, *e)
	return nil
}

func (r *kardexRepo) List(_ context.Context, q repository.KardexQuery) ([]*entity.KardexEntry, int, error) {
	var out []*entity.KardexEntry
	for _, e := range r.s.kardex {
		if q.ProductID != "" && e.ProductID != q.ProductID {
			continue
		}
		if q.WarehouseID != "" && e.WarehouseID != q.WarehouseID {
			continue
		}
		if q.Movement != nil && e.Movement != *q.Movement {
			continue
		}
		if !inRange(e.MovedAt, q.From, q.To) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	page, total := paginate(out, q.Page)
	return page, total, nil
}

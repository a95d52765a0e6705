package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var (
	_ repository.TableRepository      = (*tableRepo)(nil)
	_ repository.RentalRepository     = (*rentalRepo)(nil)
	_ repository.RentalItemRepository = (*rentalItemRepo)(nil)
)

type tableRepo struct{ s *state }

func (r *tableRepo) Create(_ context.Context, t *entity.Table) error {
	for _, other := range r.s.tables {
		if other.Number == t.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.tables[t.ID] = *t
	return nil
}

func (r *tableRepo) GetByID(_ context.Context, id string) (*entity.Table, error) {
	t, ok := r.s.tables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *tableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Table, error) {
	return r.GetByID(ctx, id)
}

func (r *tableRepo) Update(_ context.Context, t *entity.Table) error {
	if _, ok := r.s.tables[t.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.tables {
		if other.ID != t.ID && other.Number == t.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.tables[t.ID] = *t
	return nil
}

func (r *tableRepo) List(_ context.Context, q repository.TableQuery) ([]*entity.Table, error) {
	var out []*entity.Table
	for _, t := range r.s.tables {
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	page, _ := paginate(out, q.Page)
	return page, nil
}

type rentalRepo struct{ s *state }

func (r *rentalRepo) Create(_ context.Context, rt *entity.Rental) error {
	if rt.Status == entity.RentalOpen {
		for _, other := range r.s.rentals {
			if other.TableID == rt.TableID && other.Status == entity.RentalOpen {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.rentals[rt.ID] = *rt
	return nil
}

func (r *rentalRepo) GetByID(_ context.Context, id string) (*entity.Rental, error) {
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *rentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepo) FindOpenByTableForUpdate(_ context.Context, tableID string) (*entity.Rental, error) {
	var found *entity.Rental
	for _, rt := range r.s.rentals {
		if rt.TableID == tableID && rt.Status == entity.RentalOpen {
			rt := rt
			if found == nil || rt.StartedAt.After(found.StartedAt) {
				found = &rt
			}
		}
	}
	return found, nil
}

func (r *rentalRepo) Update(_ context.Context, rt *entity.Rental) error {
	if _, ok := r.s.rentals[rt.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.rentals[rt.ID] = *rt
	return nil
}

func (r *rentalRepo) List(_ context.Context, q repository.RentalQuery) ([]*entity.Rental, int, error) {
	var out []*entity.Rental
	for _, rt := range r.s.rentals {
		if q.Status != nil && rt.Status != *q.Status {
			continue
		}
		if q.TableID != "" && rt.TableID != q.TableID {
			continue
		}
		if !inRange(rt.StartedAt, q.From, q.To) {
			continue
		}
		rt := rt
		out = append(out, &rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	page, total := paginate(out, q.Page)
	return page, total, nil
}

type rentalItemRepo struct{ s *state }

func (r *rentalItemRepo) Create(_ context.Context, it *entity.RentalItem) error {
	if it.ClientOpID != nil {
		for _, other := range r.s.items {
			if other.RentalID == it.RentalID && other.ClientOpID != nil && *other.ClientOpID == *it.ClientOpID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.items[it.ID] = *it
	r.s.itemOrder = append(r.s.itemOrder, it.ID)
	return nil
}

func (r *rentalItemRepo) GetByID(_ context.Context, id string) (*entity.RentalItem, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *rentalItemRepo) Update(_ context.Context, it *entity.RentalItem) error {
	if _, ok := r.s.items[it.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[it.ID] = *it
	return nil
}

func (r *rentalItemRepo) ListByRental(_ context.Context, rentalID string, includeVoided bool) ([]*entity.RentalItem, error) {
	out := []*entity.RentalItem{}
	for _, id := range r.s.itemOrder {
		it := r.s.items[id]
		if it.RentalID != rentalID {
			continue
		}
		if !includeVoided && it.Status == entity.ItemVoided {
			continue
		}
		out = append(out, &it)
	}
	return out, nil
}

func (r *rentalItemRepo) ExistsClientOp(_ context.Context, rentalID, clientOpID string) (bool, error) {
	for _, it := range r.s.items {
		if it.RentalID == rentalID && it.ClientOpID != nil && *it.ClientOpID == clientOpID {
			return true, nil
		}
	}
	return false, nil
}

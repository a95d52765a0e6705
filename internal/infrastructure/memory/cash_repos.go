package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var (
	_ repository.CashSessionRepository  = (*cashSessionRepo)(nil)
	_ repository.CashMovementRepository = (*cashMovementRepo)(nil)
)

type cashSessionRepo struct{ s *state }

func (r *cashSessionRepo) Create(_ context.Context, cs *entity.CashSession) error {
	if cs.Status == entity.CashSessionOpen {
		for _, other := range r.s.sessions {
			if other.UserID == cs.UserID && other.Status == entity.CashSessionOpen {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.sessions[cs.ID] = *cs
	return nil
}

func (r *cashSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	cs, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &cs, nil
}

func (r *cashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.GetByID(ctx, id)
}

func (r *cashSessionRepo) FindOpenByUser(_ context.Context, userID string, _ bool) (*entity.CashSession, error) {
	for _, cs := range r.s.sessions {
		if cs.UserID == userID && cs.Status == entity.CashSessionOpen {
			return &cs, nil
		}
	}
	return nil, nil
}

func (r *cashSessionRepo) Update(_ context.Context, cs *entity.CashSession) error {
	if _, ok := r.s.sessions[cs.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sessions[cs.ID] = *cs
	return nil
}

func (r *cashSessionRepo) List(_ context.Context, q repository.CashSessionQuery) ([]*entity.CashSession, int, error) {
	var out []*entity.CashSession
	for _, cs := range r.s.sessions {
		if q.UserID != "" && cs.UserID != q.UserID {
			continue
		}
		if q.Status != nil && cs.Status != *q.Status {
			continue
		}
		if !inRange(cs.OpenedAt, q.From, q.To) {
			continue
		}
		out = append(out, &cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	page, total := paginate(out, q.Page)
	return page, total, nil
}

type cashMovementRepo struct{ s *state }

func (r *cashMovementRepo) Create(_ context.Context, m *entity.CashMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *cashMovementRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.CashMovement, error) {
	out := []*entity.CashMovement{}
	for _, m := range r.s.movements {
		if m.CashSessionID == sessionID {
			out = append(out, &m)
		}
	}
	return out, nil
}

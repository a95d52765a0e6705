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
	_ repository.CashSessionRepository  = (*CashSessionRepo)(nil)
	_ repository.CashMovementRepository = (*CashMovementRepo)(nil)
)

var cashSessionColumns = []string{
	"id", "user_id", "opened_at", "closed_at", "opening_cash", "expected_cash", "counted_cash",
	"difference", "status", "notes", "created_at", "updated_at",
}

// CashSessionRepo sesiones de caja. Un índice único parcial impide dos abiertas por usuario.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador.
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

func scanCashSession(row scanner) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(&s.ID, &s.UserID, &s.OpenedAt, &s.ClosedAt, &s.OpeningCash, &s.ExpectedCash, &s.CountedCash,
		&s.Difference, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create abre la sesión. Ya abierta para el usuario → ErrDuplicate.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	sql, args, err := psql.Insert("cash_sessions").Columns(cashSessionColumns...).Values(
		s.ID, s.UserID, s.OpenedAt, s.ClosedAt, s.OpeningCash, s.ExpectedCash, s.CountedCash,
		s.Difference, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetByID nil si no existe.
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, false)
}

// GetForUpdate bloquea la fila de la sesión.
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, true)
}

// FindOpenByUser sesión abierta del usuario.
func (r *CashSessionRepo) FindOpenByUser(ctx context.Context, userID string, forUpdate bool) (*entity.CashSession, error) {
	return r.getOne(ctx, sq.Eq{"user_id": userID, "status": entity.CashSessionOpen}, forUpdate)
}

func (r *CashSessionRepo) getOne(ctx context.Context, where sq.Eq, forUpdate bool) (*entity.CashSession, error) {
	b := psql.Select(cashSessionColumns...).From("cash_sessions").Where(where).Limit(1)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	s, err := scanCashSession(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return s, nil
}

// Update guarda esperado, arqueo y estado.
func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	sql, args, err := psql.Update("cash_sessions").SetMap(map[string]any{
		"closed_at":     s.ClosedAt,
		"expected_cash": s.ExpectedCash,
		"counted_cash":  s.CountedCash,
		"difference":    s.Difference,
		"status":        s.Status,
		"notes":         s.Notes,
		"updated_at":    s.UpdatedAt,
	}).Where(sq.Eq{"id": s.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List sesiones filtradas, más reciente primero.
func (r *CashSessionRepo) List(ctx context.Context, q repository.CashSessionQuery) ([]*entity.CashSession, int, error) {
	page := q.Page.Normalize()
	where := sq.And{}
	if q.UserID != "" {
		where = append(where, sq.Eq{"user_id": q.UserID})
	}
	if q.Status != nil {
		where = append(where, sq.Eq{"status": *q.Status})
	}
	if q.From != nil {
		where = append(where, sq.GtOrEq{"opened_at": *q.From})
	}
	if q.To != nil {
		where = append(where, sq.LtOrEq{"opened_at": *q.To})
	}
	rows, total, err := countAndSelect(ctx, r.q,
		psql.Select("COUNT(*)").From("cash_sessions").Where(where),
		psql.Select(cashSessionColumns...).From("cash_sessions").Where(where).
			OrderBy("opened_at DESC").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()
	var out []*entity.CashSession
	for rows.Next() {
		s, err := scanCashSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// CashMovementRepo movimientos append-only.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador.
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *CashMovementRepo) Create(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, cash_session_id, type, amount, description, document_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, m.ID, m.CashSessionID, m.Type, m.Amount, m.Description, m.DocumentID, m.UserID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListBySession movimientos en orden de registro.
func (r *CashMovementRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, cash_session_id, type, amount, description, document_id, user_id, created_at
		FROM cash_movements WHERE cash_session_id = $1 ORDER BY created_at, seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	out := []*entity.CashMovement{}
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.CashSessionID, &m.Type, &m.Amount, &m.Description, &m.DocumentID, &m.UserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

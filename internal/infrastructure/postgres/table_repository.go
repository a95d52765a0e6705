package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ repository.TableRepository = (*TableRepo)(nil)

var tableColumns = []string{
	"id", "number", "name", "type_id", "status", "rate_per_hour", "start_time", "end_time",
	"amount", "consumption", "cover_image", "cover_url", "created_at", "updated_at",
}

// TableRepo implementación de TableRepository sobre PostgreSQL (pool o tx).
type TableRepo struct {
	q Querier
}

// NewTableRepository construye el adaptador.
func NewTableRepository(q Querier) *TableRepo {
	return &TableRepo{q: q}
}

func scanTable(row scanner) (*entity.Table, error) {
	var t entity.Table
	err := row.Scan(&t.ID, &t.Number, &t.Name, &t.TypeID, &t.Status, &t.RatePerHour, &t.StartTime, &t.EndTime,
		&t.Amount, &t.Consumption, &t.CoverImage, &t.CoverURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste una mesa. Número duplicado → ErrDuplicate.
func (r *TableRepo) Create(ctx context.Context, t *entity.Table) error {
	sql, args, err := psql.Insert("billiard_tables").Columns(tableColumns...).Values(
		t.ID, t.Number, t.Name, t.TypeID, t.Status, t.RatePerHour, t.StartTime, t.EndTime,
		t.Amount, t.Consumption, t.CoverImage, t.CoverURL, t.CreatedAt, t.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

// GetByID obtiene una mesa; nil si no existe.
func (r *TableRepo) GetByID(ctx context.Context, id string) (*entity.Table, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la mesa bloqueando la fila.
func (r *TableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Table, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *TableRepo) get(ctx context.Context, id, suffix string) (*entity.Table, error) {
	b := psql.Select(tableColumns...).From("billiard_tables").Where(sq.Eq{"id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	t, err := scanTable(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	return t, nil
}

// Update reescribe la fila completa.
func (r *TableRepo) Update(ctx context.Context, t *entity.Table) error {
	sql, args, err := psql.Update("billiard_tables").SetMap(map[string]any{
		"number":        t.Number,
		"name":          t.Name,
		"type_id":       t.TypeID,
		"status":        t.Status,
		"rate_per_hour": t.RatePerHour,
		"start_time":    t.StartTime,
		"end_time":      t.EndTime,
		"amount":        t.Amount,
		"consumption":   t.Consumption,
		"cover_image":   t.CoverImage,
		"cover_url":     t.CoverURL,
		"updated_at":    t.UpdatedAt,
	}).Where(sq.Eq{"id": t.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List mesas ordenadas por número.
func (r *TableRepo) List(ctx context.Context, q repository.TableQuery) ([]*entity.Table, error) {
	page := q.Page.Normalize()
	b := psql.Select(tableColumns...).From("billiard_tables").OrderBy("number").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset))
	if q.Status != nil {
		b = b.Where(sq.Eq{"status": *q.Status})
	}
	rows, err := queryRows(ctx, r.q, b)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var out []*entity.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

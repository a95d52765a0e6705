package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier interfaz común de *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner fila individual o cursor.
type scanner interface {
	Scan(dest ...any) error
}

// psql builder con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// countAndSelect ejecuta el COUNT(*) del filtro y luego la página pedida.
func countAndSelect(ctx context.Context, q Querier, count sq.SelectBuilder, list sq.SelectBuilder) (pgx.Rows, int, error) {
	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	listSQL, listArgs, err := list.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// queryRows ejecuta un select construido con squirrel.
func queryRows(ctx context.Context, q Querier, b sq.SelectBuilder) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.Query(ctx, sql, args...)
}

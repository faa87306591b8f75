package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// Querier is the statement surface shared by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RowMapper converts the current row into a T.
type RowMapper[T any] = pgx.RowToFunc[T]

// StructMapper maps columns to the fields of T by name (or `db` tag).
// Columns without a matching field are an error; fields without a column
// keep their zero value.
func StructMapper[T any]() RowMapper[T] {
	return pgx.RowToStructByNameLax[T]
}

// ScalarMapper reads a single-column row into a T.
func ScalarMapper[T any]() RowMapper[T] {
	return pgx.RowTo[T]
}

// Template issues statements against a Querier. It is safe for concurrent
// use when the Querier is; a *pgxpool.Pool is.
type Template struct {
	db Querier
}

// NewTemplate creates a template over db.
// Panics if db is nil.
func NewTemplate(db Querier) *Template {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Template{db: db}
}

type txKey struct{}

// querier returns the transaction bound to ctx by InTransaction, or the
// template's own Querier.
func (t *Template) querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return t.db
}

// InTransaction runs fn with a context bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics. Nested calls use savepoints.
func (t *Template) InTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := t.querier(ctx).Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", pgscan.ErrDataAccess, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", pgscan.ErrDataAccess, err)
	}
	return nil
}

// Update executes a statement and returns the number of affected rows.
func (t *Template) Update(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, dataAccessError(sql, err)
	}
	return tag.RowsAffected(), nil
}

// UpdateAndReturnGeneratedKey executes an INSERT ... RETURNING statement that
// must produce exactly one row, and returns its first column.
func (t *Template) UpdateAndReturnGeneratedKey(ctx context.Context, sql string, args ...any) (int64, error) {
	keys, err := QueryForList(ctx, t, sql, ScalarMapper[int64](), args...)
	if err != nil {
		return 0, err
	}
	switch len(keys) {
	case 1:
		return keys[0], nil
	case 0:
		return 0, fmt.Errorf("%w: 0 rows inserted", pgscan.ErrIncorrectResultSize)
	default:
		return 0, fmt.Errorf("%w: %d rows inserted", pgscan.ErrIncorrectResultSize, len(keys))
	}
}

// QueryForNumber runs a query returning one numeric value.
func (t *Template) QueryForNumber(ctx context.Context, sql string, args ...any) (int64, error) {
	return QueryForObject(ctx, t, sql, ScalarMapper[int64](), args...)
}

// QueryForList runs a query and maps every row. A query without rows yields
// an empty slice.
func QueryForList[T any](ctx context.Context, t *Template, sql string, mapper RowMapper[T], args ...any) ([]T, error) {
	rows, err := t.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, dataAccessError(sql, err)
	}
	items, err := pgx.CollectRows(rows, mapper)
	if err != nil {
		return nil, dataAccessError(sql, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// QueryForObject runs a query that must return exactly one row.
func QueryForObject[T any](ctx context.Context, t *Template, sql string, mapper RowMapper[T], args ...any) (T, error) {
	var zero T
	rows, err := t.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return zero, dataAccessError(sql, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, mapper)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return zero, fmt.Errorf("%w: %s", pgscan.ErrEmptyResult, sql)
	case errors.Is(err, pgx.ErrTooManyRows):
		return zero, fmt.Errorf("%w: multiple rows found: %s", pgscan.ErrIncorrectResultSize, sql)
	case err != nil:
		return zero, dataAccessError(sql, err)
	}
	return item, nil
}

func dataAccessError(sql string, err error) error {
	return fmt.Errorf("%w: %s: %w", pgscan.ErrDataAccess, firstLine(sql), err)
}

func firstLine(sql string) string {
	for i, r := range sql {
		if r == '\n' {
			return sql[:i] + " ..."
		}
	}
	return sql
}

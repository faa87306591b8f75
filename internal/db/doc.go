// Package db provides a small SQL template over pgx connection pools.
//
// The Template runs statements against a *pgxpool.Pool, or against the
// transaction bound to the context by InTransaction, so the same calls work
// inside and outside a transaction:
//
//	err := tmpl.InTransaction(ctx, func(ctx context.Context) error {
//	    if _, err := tmpl.Update(ctx, "DELETE FROM t WHERE k = $1", k); err != nil {
//	        return err
//	    }
//	    _, err := tmpl.UpdateAndReturnGeneratedKey(ctx, "INSERT INTO t (k) VALUES ($1) RETURNING id", k)
//	    return err
//	})
//
// Row mapping uses pgx.RowToFunc values: StructMapper maps columns to struct
// fields by name and ScalarMapper reads a single column.
//
// All statement failures wrap pgscan.ErrDataAccess. Single-row queries fail
// with pgscan.ErrEmptyResult or pgscan.ErrIncorrectResultSize.
package db

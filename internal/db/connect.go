package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns caps the pool; indexing issues statements sequentially.
	DefaultMaxConns = 4

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime closes connections left idle between commands.
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// Connect opens a pool for connString (URL or key=value form) and verifies
// it with a ping. Failures wrap pgscan.ErrConnectionFailed.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	if strings.TrimSpace(connString) == "" {
		return nil, fmt.Errorf("%w: connection string is empty", pgscan.ErrInvalidConfig)
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection string: %w", pgscan.ErrInvalidConfig, err)
	}
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime

	cc := poolConfig.ConnConfig
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cc.Host, cc.Port, cc.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cc.Host, cc.Port, cc.Database)
	}
	return pool, nil
}

// wrapConnectionError adds a hint for the common connection failures.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf("connection refused by %s (is PostgreSQL running? check: pg_isready -h %s -p %d)", addr, host, port)
	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q (check $PGPASSWORD or ~/.pgpass)", database)
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist (create it with: createdb %s)", database, database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	default:
		hint = fmt.Sprintf("cannot connect to %s", addr)
	}
	return fmt.Errorf("%w: %s: %w", pgscan.ErrConnectionFailed, hint, err)
}

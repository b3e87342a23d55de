package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrapbookAPI/internal/scrapbook"
)

//go:embed schema/postgres.sql
var postgresSchema string

var postgresDialect = dialect{
	name:        "postgres",
	tagContains: "s.tags @> jsonb_build_array(?::text)",
	lower:       "LOWER",
	schema:      postgresSchema,
}

// OpenPostgres connects a pgx pool to databaseURL and pings it.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: &pgConn{pool: pool}, d: postgresDialect}, nil
}

type pgConn struct {
	pool *pgxpool.Pool
}

func (c *pgConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgExec(ctx, c.pool, query, args...)
}

func (c *pgConn) QueryRow(ctx context.Context, query string, args ...any) row {
	return pgRow{c.pool.QueryRow(ctx, dollarRebind(query), args...)}
}

func (c *pgConn) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := c.pool.Query(ctx, dollarRebind(query), args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	return r, nil
}

func (c *pgConn) Begin(ctx context.Context) (tx, error) {
	t, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: t}, nil
}

func (c *pgConn) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgConn) Close() {
	c.pool.Close()
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgExec(ctx, t.tx, query, args...)
}

func (t *pgTx) QueryRow(ctx context.Context, query string, args ...any) row {
	return pgRow{t.tx.QueryRow(ctx, dollarRebind(query), args...)}
}

func (t *pgTx) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := t.tx.Query(ctx, dollarRebind(query), args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	return r, nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pgExec(ctx context.Context, e pgExecer, query string, args ...any) (int64, error) {
	tag, err := e.Exec(ctx, dollarRebind(query), args...)
	if err != nil {
		return 0, translatePgError(err)
	}
	return tag.RowsAffected(), nil
}

type pgRow struct {
	r pgx.Row
}

func (r pgRow) Scan(dest ...any) error {
	return translatePgError(r.r.Scan(dest...))
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return scrapbook.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", scrapbook.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", scrapbook.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

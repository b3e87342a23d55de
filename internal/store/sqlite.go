package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"

	"scrapbookAPI/internal/scrapbook"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

var sqliteDialect = dialect{
	name:        "sqlite",
	tagContains: "EXISTS (SELECT 1 FROM json_each(s.tags) WHERE json_each.value = ?)",
	lower:       "unicode_lower",
	schema:      sqliteSchema,
}

// SQLite's built-in LOWER only folds ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

const sqliteConstraint = 19

// OpenSQLite opens (or creates) the SQLite database at path. ":memory:" gives
// a private in-memory database, which is what the tests use.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !memory && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory database
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	return &Store{db: &sqliteConn{db: db}, d: sqliteDialect}, nil
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqliteConn struct {
	db *sql.DB
}

func (c *sqliteConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlExec(ctx, c.db, query, args...)
}

func (c *sqliteConn) QueryRow(ctx context.Context, query string, args ...any) row {
	return sqlRow{c.db.QueryRowContext(ctx, query, args...)}
}

func (c *sqliteConn) Query(ctx context.Context, query string, args ...any) (rows, error) {
	return sqlQuery(ctx, c.db, query, args...)
}

func (c *sqliteConn) Begin(ctx context.Context) (tx, error) {
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: t}, nil
}

func (c *sqliteConn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqliteConn) Close() {
	c.db.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlExec(ctx, t.tx, query, args...)
}

func (t *sqliteTx) QueryRow(ctx context.Context, query string, args ...any) row {
	return sqlRow{t.tx.QueryRowContext(ctx, query, args...)}
}

func (t *sqliteTx) Query(ctx context.Context, query string, args ...any) (rows, error) {
	return sqlQuery(ctx, t.tx, query, args...)
}

func (t *sqliteTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

func sqlExec(ctx context.Context, e sqlExecer, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sqlQuery(ctx context.Context, e sqlExecer, query string, args ...any) (rows, error) {
	r, err := e.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateSQLiteError(err)
	}
	return sqlRows{r}, nil
}

type sqlRow struct {
	r *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	return translateSQLiteError(r.r.Scan(dest...))
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	r.Rows.Close()
}

func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return scrapbook.ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqliteConstraint {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "FOREIGN KEY"):
			return fmt.Errorf("%w: %s", scrapbook.ErrNotFound, msg)
		case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
			return fmt.Errorf("%w: %s", scrapbook.ErrConflict, msg)
		}
	}
	return err
}

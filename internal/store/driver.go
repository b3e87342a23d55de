package store

import (
	"context"
	"strconv"
	"strings"
)

// row, rows, querier and conn hide the difference between pgx and
// database/sql so the SQL in this package is written once. Implementations
// translate driver errors (no rows, unique and foreign-key violations) into
// the scrapbook error taxonomy.
type row interface {
	Scan(dest ...any) error
}

type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) row
	Query(ctx context.Context, query string, args ...any) (rows, error)
}

type tx interface {
	querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type conn interface {
	querier
	Begin(ctx context.Context) (tx, error)
	Ping(ctx context.Context) error
	Close()
}

// dialect holds the few SQL fragments that differ between Postgres and SQLite.
type dialect struct {
	name string
	// tagContains tests whether the scrapbook tags column (alias s) holds
	// the tag passed as the single placeholder.
	tagContains string
	// lower folds a text column to lower case for search.
	lower  string
	schema string
}

// dollarRebind turns ? placeholders into $1..$n.
func dollarRebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

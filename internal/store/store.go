package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Store persists the scrapbook graph and its satellites (likes, collaborators,
// templates, users) in Postgres or SQLite.
type Store struct {
	db conn
	d  dialect
}

// Open picks the driver from the URL scheme: postgres:// and postgresql://
// use pgx, sqlite:// sqlite: and file: use the pure-Go SQLite driver.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	switch {
	case databaseURL == "":
		return nil, errors.New("DATABASE_URL is not set")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return OpenPostgres(ctx, databaseURL, maxConns)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite:"))
	case strings.HasPrefix(databaseURL, "file:"):
		return OpenSQLite(ctx, databaseURL)
	}
	return nil, fmt.Errorf("unsupported database URL scheme in %q", redact(databaseURL))
}

func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "..."
	}
	return "..."
}

// Driver names the active SQL dialect.
func (s *Store) Driver() string {
	return s.d.name
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	start := time.Now()
	for _, stmt := range strings.Split(s.d.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", firstLine(stmt), err)
		}
	}
	log.Printf("Schema applied (%s) in %v", s.d.name, time.Since(start))
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	t, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer t.Rollback(ctx)

	if err := fn(t); err != nil {
		return err
	}
	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

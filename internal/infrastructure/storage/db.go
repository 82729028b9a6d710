package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	settingsTable = "settings"
	itemsTable    = "items"
)

// DB is a SQL handle paired with a statement builder for its dialect.
type DB struct {
	conn    *sql.DB
	builder sq.StatementBuilderType
	driver  string
}

// Open connects to Postgres for postgres:// DSNs and to SQLite otherwise,
// then creates the tables it needs.
func Open(ctx context.Context, dsn string) (*DB, error) {
	driver, source, placeholder := resolveDriver(dsn)

	conn, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db := &DB{
		conn:    conn,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		driver:  driver,
	}

	if driver == "sqlite" {
		// sqlite allows one writer at a time.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
		// watch and one-shot commands may write the same file.
		if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Driver reports the database/sql driver name in use.
func (d *DB) Driver() string {
	return d.driver
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			analyzed INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_seq ON items(seq)`,
	}
	for _, stmt := range statements {
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func resolveDriver(dsn string) (driver, source string, placeholder sq.PlaceholderFormat) {
	trimmed := strings.TrimSpace(dsn)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres", trimmed, sq.Dollar
	case strings.HasPrefix(lower, "sqlite://"):
		return "sqlite", trimmed[len("sqlite://"):], sq.Question
	default:
		return "sqlite", trimmed, sq.Question
	}
}

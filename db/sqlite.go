package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database holding one or more loaded feeds. SQLite
// supports a single writer, so the pool is pinned to one connection and the
// validation run owns it for its duration; callers serialize writes.
type DB struct {
	conn *sql.DB
}

// Open opens a SQLite database with WAL mode and foreign keys enabled.
func Open(path string) (*DB, error) {
	dsn := path + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	return &DB{conn: conn}, nil
}

// OpenMemory opens a throwaway in-memory database, used by tests.
func OpenMemory() (*DB, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying connection for callers issuing their own SQL.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// TableExists reports whether a table is present in the database.
func (d *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := d.conn.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ColumnExists reports whether a table has the given column. A missing
// table counts as a missing column.
func (d *DB) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var n int
	err := d.conn.QueryRowContext(ctx,
		"SELECT count(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check column %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}

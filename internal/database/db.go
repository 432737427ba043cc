// Package database owns the sqlite connection and schema migrations for the
// optional match store.
package database

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Config holds database configuration.
type Config struct {
	DatabasePath string
}

// DB wraps the sqlite connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if necessary) the sqlite database and applies any
// pending migrations.
func NewDB(cfg Config) (*DB, error) {
	dsn := cfg.DatabasePath + "?_journal_mode=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	// sqlite handles a single writer; cap the pool to avoid SQLITE_BUSY churn
	conn.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		conn.Close()
		return nil, err
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Connection exposes the underlying sql.DB for repositories.
func (d *DB) Connection() *sql.DB {
	return d.conn
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

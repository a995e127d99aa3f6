package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a SQL database and creates the ledger schema if missing.
// For sqlite3 the parent directory of dsn is created first.
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite3" && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the ledger tables if they don't exist
func initializeSchema(ctx context.Context, db *sqlx.DB) error {
	statements := []struct {
		table string
		stmt  string
	}{
		{"ledger_state", `
			CREATE TABLE IF NOT EXISTS ledger_state (
				id INTEGER PRIMARY KEY,
				logged_in BOOLEAN NOT NULL DEFAULT FALSE,
				notes TEXT NOT NULL DEFAULT ''
			)`},
		{"subjects", `
			CREATE TABLE IF NOT EXISTS subjects (
				name TEXT PRIMARY KEY,
				position INTEGER NOT NULL
			)`},
		{"topics", `
			CREATE TABLE IF NOT EXISTS topics (
				subject_name TEXT NOT NULL,
				name TEXT NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (subject_name, name),
				FOREIGN KEY (subject_name) REFERENCES subjects(name) ON DELETE CASCADE
			)`},
		{"performance_records", `
			CREATE TABLE IF NOT EXISTS performance_records (
				subject_name TEXT NOT NULL,
				topic_name TEXT NOT NULL,
				position INTEGER NOT NULL,
				correct INTEGER NOT NULL,
				total INTEGER NOT NULL,
				recorded_at_unix BIGINT NOT NULL,
				PRIMARY KEY (subject_name, topic_name, position),
				CHECK (total >= 1 AND correct >= 0 AND correct <= total),
				FOREIGN KEY (subject_name, topic_name) REFERENCES topics(subject_name, name) ON DELETE CASCADE
			)`},
		{"review_entries", `
			CREATE TABLE IF NOT EXISTS review_entries (
				id TEXT PRIMARY KEY,
				position INTEGER NOT NULL,
				subject_name TEXT NOT NULL,
				topic_name TEXT NOT NULL,
				correct INTEGER NOT NULL,
				total INTEGER NOT NULL,
				recorded_at_unix BIGINT NOT NULL
			)`},
	}

	for _, s := range statements {
		if _, err := db.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
	}
	return nil
}

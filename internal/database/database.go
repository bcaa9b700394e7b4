// Package database provides the SQLite run history store and its migrations.
package database

import (
	"database/sql"
	"os"
	"path/filepath"

	// SQLite driver for database/sql
	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection with additional functionality.
type DB struct {
	*sql.DB
}

// New opens the history database, creating its parent directory if needed.
func New(dbPath string) (*DB, error) {
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer per process. Also keeps :memory: on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// Migrate runs all database migrations.
func (db *DB) Migrate() error {
	return runMigrations(db.DB)
}

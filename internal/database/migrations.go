package database

import (
	"database/sql"
	"fmt"
)

type migration struct {
	name       string
	statements []string
}

var migrations = []migration{
	{
		name: "create_runs_table",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				action TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				bag_path TEXT NOT NULL,
				output_path TEXT,
				command TEXT NOT NULL,
				output TEXT,
				exit_code INTEGER,
				started_at DATETIME,
				finished_at DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		name: "create_runs_indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_runs_action ON runs(action)`,
			`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
			`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		},
	},
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		migration TEXT UNIQUE NOT NULL,
		batch INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func recordMigration(db execer, name string, batch int) error {
	_, err := db.Exec("INSERT INTO migrations (migration, batch) VALUES (?, ?)", name, batch)
	return err
}

func hasMigrationRun(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE migration = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func nextBatch(db *sql.DB) (int, error) {
	var batch sql.NullInt64
	if err := db.QueryRow("SELECT MAX(batch) FROM migrations").Scan(&batch); err != nil {
		return 0, err
	}
	return int(batch.Int64) + 1, nil
}

func runMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	batch, err := nextBatch(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		done, err := hasMigrationRun(db, m.name)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %s: %w", m.name, err)
			}
		}
		if err := recordMigration(tx, m.name, batch); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

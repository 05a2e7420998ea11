package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`

// migration is one numbered step, e.g. 0001_init with its up and down scripts.
type migration struct {
	version string
	up      string
	down    string
}

// MigrateUp applies every migration not yet recorded in schema_migrations, oldest first.
func MigrateUp(db *sql.DB) error {
	steps, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	for _, m := range steps {
		if applied[m.version] {
			continue
		}
		if err := runStep(db, m.version, m.up, `INSERT INTO schema_migrations (version) VALUES (?)`); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
	}
	return nil
}

// MigrateDown reverts the applied migrations, newest first.
func MigrateDown(db *sql.DB) error {
	steps, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	for i := len(steps) - 1; i >= 0; i-- {
		m := steps[i]
		if !applied[m.version] {
			continue
		}
		if err := runStep(db, m.version, m.down, `DELETE FROM schema_migrations WHERE version = ?`); err != nil {
			return fmt.Errorf("revert migration %s: %w", m.version, err)
		}
	}
	return nil
}

func runStep(db *sql.DB, version, script, bookkeeping string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if strings.TrimSpace(script) != "" {
		if _, err := tx.Exec(script); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	if _, err := db.Exec(migrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(names)
	out := make([]migration, 0, len(names))
	for _, name := range names {
		version := strings.TrimSuffix(path.Base(name), ".up.sql")
		up, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		down, err := migrationFiles.ReadFile(path.Join("migrations", version+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", version, err)
		}
		out = append(out, migration{version: version, up: string(up), down: string(down)})
	}
	return out, nil
}

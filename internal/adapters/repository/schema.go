package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step.
type migration struct {
	Version int
	Name    string
	Up      string
}

// migrations are applied in order and recorded in schema_version.
var migrations = []migration{ //nolint:gochecknoglobals // static schema history
	{
		Version: 1,
		Name:    "create_roster_tables",
		Up: `
CREATE TABLE IF NOT EXISTS athletes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	gender TEXT,
	grade INTEGER NOT NULL DEFAULT 0,
	personal_record TEXT,
	events TEXT
);

CREATE TABLE IF NOT EXISTS meets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	date TEXT NOT NULL,
	location TEXT,
	description TEXT
);

CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	athlete_id INTEGER NOT NULL REFERENCES athletes(id) ON DELETE CASCADE,
	meet_id INTEGER NOT NULL REFERENCES meets(id) ON DELETE CASCADE,
	finish_time TEXT NOT NULL,
	place INTEGER
);

CREATE TABLE IF NOT EXISTS coaches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	title TEXT,
	bio TEXT
);`,
	},
	{
		Version: 2,
		Name:    "index_results_by_meet_and_athlete",
		Up: `
CREATE INDEX IF NOT EXISTS idx_results_meet ON results(meet_id, place);
CREATE INDEX IF NOT EXISTS idx_results_athlete ON results(athlete_id);`,
	},
}

// SchemaVersion returns the highest version the code knows about.
func SchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// migrate applies pending migrations and returns the versions it applied.
func migrate(ctx context.Context, db *sql.DB) ([]int, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return nil, fmt.Errorf("failed to get current schema version: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

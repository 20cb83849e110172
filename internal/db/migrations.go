package db

import (
	"context"
	"fmt"
)

// schemaVersion is bumped whenever a migration is appended below.
const schemaVersion = 1

var migrations = []string{
	// 1: encrypted key/value secrets
	`CREATE TABLE IF NOT EXISTS secrets (
		name TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// migrate applies every migration newer than the stored user_version.
func (db *DB) migrate() error {
	ctx := context.Background()

	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		if _, err := db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	if current < schemaVersion {
		// PRAGMA does not accept bound parameters.
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}
	}

	return nil
}

// SchemaVersion returns the schema version stored in the database.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&v)
	return v, err
}

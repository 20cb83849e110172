package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSecretNotFound is returned when no secret exists under a name.
var ErrSecretNotFound = errors.New("secret not found")

// GetSecret returns the stored (sealed) value for name.
func (db *DB) GetSecret(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, "SELECT value FROM secrets WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	return value, nil
}

// PutSecret inserts or replaces the value stored under name.
func (db *DB) PutSecret(ctx context.Context, name string, value []byte) error {
	query := `
	INSERT INTO secrets (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// DeleteSecret removes name and vacuums so the sealed bytes leave the file.
// It reports whether a row was deleted.
func (db *DB) DeleteSecret(ctx context.Context, name string) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM secrets WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("failed to delete secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := db.Vacuum(ctx); err != nil {
		return true, fmt.Errorf("failed to vacuum after delete: %w", err)
	}
	return true, nil
}

package database

import (
	"context"
	"fmt"
)

// schema is the full database schema. Statements are idempotent so
// Bootstrap can run unconditionally on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS applied_effects (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		serial     TEXT NOT NULL,
		zone       TEXT NOT NULL,
		option_uid TEXT NOT NULL,
		parameter  TEXT NOT NULL DEFAULT '',
		colours    TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applied_effects_serial
		ON applied_effects (serial, created_at)`,
}

// Bootstrap creates the schema if it does not exist yet.
func (db *DB) Bootstrap(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrapping schema: %w", err)
		}
	}
	return nil
}

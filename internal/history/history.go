// Package history records successful effect applications so the UI can
// show what was recently applied to each device.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/polychromatic/polychromatic-core/internal/infrastructure/database"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Entry is one recorded effect application.
type Entry struct {
	ID        int64
	Serial    string
	Zone      string
	OptionUID string
	Parameter string
	Colours   []string
	CreatedAt time.Time
}

// Repository stores applied-effect history in SQLite.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository over an open database. The schema
// must already be bootstrapped.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// RecordApply inserts a history entry for a successful application.
func (r *Repository) RecordApply(ctx context.Context, serial, zone, optionUID, parameter string, colours []string) error {
	if serial == "" {
		return fmt.Errorf("serial is required")
	}
	if optionUID == "" {
		return fmt.Errorf("option uid is required")
	}
	if colours == nil {
		colours = []string{}
	}

	coloursJSON, err := json.Marshal(colours)
	if err != nil {
		return fmt.Errorf("marshalling colours: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO applied_effects (serial, zone, option_uid, parameter, colours, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		serial,
		zone,
		optionUID,
		parameter,
		string(coloursJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// History returns recent entries for a device, newest first.
// A limit of zero or below uses the default (50); the cap is 200.
func (r *Repository) History(ctx context.Context, serial string, limit int) ([]Entry, error) {
	if serial == "" {
		return nil, fmt.Errorf("serial is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, serial, zone, option_uid, parameter, colours, created_at
		 FROM applied_effects
		 WHERE serial = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		serial,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var coloursJSON string
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.Serial, &entry.Zone, &entry.OptionUID,
			&entry.Parameter, &coloursJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(coloursJSON), &entry.Colours); err != nil {
			return nil, fmt.Errorf("unmarshalling colours: %w", err)
		}
		entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the given duration and reports how
// many rows were removed.
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM applied_effects WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting history entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

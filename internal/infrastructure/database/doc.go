// Package database provides SQLite connectivity for Polychromatic.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Busy timeout to ride out lock contention
//   - Connection lifecycle (single writer, 0600 file permissions)
//
// The schema is a single applied-effects history table, bootstrapped
// idempotently on startup; there is no migration framework.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database

// Package persistence implements the file-based fallback store for
// last-applied effect state.
//
// Backends whose vendor daemon records effect state natively never touch
// this package. For daemon versions without native persistence, one flat
// file per (serial, zone, key) under the backend's storage directory
// remembers the last applied effect name, colours, speed and direction.
//
// The store is read-after-write consistent within a single process.
// Concurrent writers are not coordinated here: the process coordinator
// guarantees at most one local writer per device.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPermissions  = 0750
	filePermissions = 0644

	// DefaultValue is returned for keys that have never been written.
	DefaultValue = "0"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store persists single-line values for one backend, one file per
// (serial, zone, key).
type Store struct {
	dir    string
	logger Logger
}

// NewStore creates a store rooted at dir, creating it if needed.
// Conventionally dir is backends/<backend_id>/persistence under the
// application config root.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating persistence directory: %w", err)
	}
	return &Store{dir: dir, logger: noopLogger{}}, nil
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Get returns the stored value for (serial, zone, key), or DefaultValue
// when the key has never been written. Read failures are recovered
// locally: they are logged and the default is returned, never surfaced
// to the user.
func (s *Store) Get(serial, zone, key string) string {
	data, err := os.ReadFile(s.path(serial, zone, key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unreadable persistence file, using default",
				"serial", serial, "zone", zone, "key", key, "error", err)
		}
		return DefaultValue
	}
	return strings.TrimSpace(string(data))
}

// Set writes the value for (serial, zone, key).
func (s *Store) Set(serial, zone, key, value string) error {
	path := s.path(serial, zone, key)
	if err := os.WriteFile(path, []byte(value+"\n"), filePermissions); err != nil {
		return fmt.Errorf("writing persistence file %s: %w", filepath.Base(path), err)
	}
	s.logger.Debug("persistence written", "serial", serial, "zone", zone, "key", key, "value", value)
	return nil
}

func (s *Store) path(serial, zone, key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s", serial, zone, key))
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Polychromatic.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Backends BackendsConfig `yaml:"backends"`
	Helper   HelperConfig   `yaml:"helper"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig contains the directories Polychromatic writes to.
type PathsConfig struct {
	// ConfigDir is the root of the user's configuration tree: effects,
	// presets, per-device software state and backend persistence.
	ConfigDir string `yaml:"config_dir"`

	// RuntimeDir holds PID and lock files. Usually under XDG_RUNTIME_DIR.
	RuntimeDir string `yaml:"runtime_dir"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// BackendsConfig contains per-backend settings.
type BackendsConfig struct {
	OpenRazer OpenRazerConfig `yaml:"openrazer"`
}

// OpenRazerConfig contains settings for the OpenRazer backend.
type OpenRazerConfig struct {
	// Enabled controls whether the backend is registered at all.
	Enabled bool `yaml:"enabled"`

	// SysfsRoot overrides the HID driver sysfs root used by the legacy
	// device workaround. Empty means the system default.
	SysfsRoot string `yaml:"sysfs_root,omitempty"`
}

// HelperConfig contains settings for the software-effect renderer.
type HelperConfig struct {
	// Binary is the executable launched to render software effects.
	// Empty means the running binary's own path.
	Binary string `yaml:"binary,omitempty"`

	// GracefulTimeout is how long to wait for a renderer to stop before
	// SIGKILL (seconds).
	GracefulTimeout int `yaml:"graceful_timeout"`
}

// HistoryConfig contains applied-effect history settings.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// RetentionDays is how long history entries are kept. 0 disables
	// pruning.
	RetentionDays int `yaml:"retention_days"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded, XDG-aware)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing config file is not an error; a desktop install runs on
// defaults until the user writes one.
//
// Environment variables follow the pattern: POLYCHROMATIC_SECTION_KEY
// For example: POLYCHROMATIC_DATABASE_PATH, POLYCHROMATIC_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	configDir := "./polychromatic"
	if base, err := os.UserConfigDir(); err == nil {
		configDir = filepath.Join(base, "polychromatic")
	}

	runtimeDir := filepath.Join(os.TempDir(), fmt.Sprintf("polychromatic-%d", os.Getuid()))
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		runtimeDir = filepath.Join(xdg, "polychromatic")
	}

	return &Config{
		Paths: PathsConfig{
			ConfigDir:  configDir,
			RuntimeDir: runtimeDir,
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(configDir, "history.db"),
			WALMode:     true,
			BusyTimeout: 5,
		},
		Backends: BackendsConfig{
			OpenRazer: OpenRazerConfig{
				Enabled: true,
			},
		},
		Helper: HelperConfig{
			GracefulTimeout: 5,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// Environment variables follow the pattern: POLYCHROMATIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYCHROMATIC_CONFIG_DIR"); v != "" {
		cfg.Paths.ConfigDir = v
	}
	if v := os.Getenv("POLYCHROMATIC_RUNTIME_DIR"); v != "" {
		cfg.Paths.RuntimeDir = v
	}
	if v := os.Getenv("POLYCHROMATIC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("POLYCHROMATIC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Paths.ConfigDir == "" {
		errs = append(errs, "paths.config_dir is required")
	}
	if c.Paths.RuntimeDir == "" {
		errs = append(errs, "paths.runtime_dir is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}
	if c.Helper.GracefulTimeout <= 0 {
		errs = append(errs, "helper.graceful_timeout must be positive")
	}
	if c.History.RetentionDays < 0 {
		errs = append(errs, "history.retention_days must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// StatesDir is where per-device software state documents live.
func (c *Config) StatesDir() string {
	return filepath.Join(c.Paths.ConfigDir, "states")
}

// EffectsDir is where user-authored effect documents live.
func (c *Config) EffectsDir() string {
	return filepath.Join(c.Paths.ConfigDir, "effects")
}

// PresetsDir is where preset documents live.
func (c *Config) PresetsDir() string {
	return filepath.Join(c.Paths.ConfigDir, "presets")
}

// PersistenceDir is where a backend stores its file-based zone state.
func (c *Config) PersistenceDir(backendID string) string {
	return filepath.Join(c.Paths.ConfigDir, "backends", backendID, "persistence")
}

// GetHelperGracefulTimeout returns the renderer stop timeout as a Duration.
func (c *Config) GetHelperGracefulTimeout() time.Duration {
	return time.Duration(c.Helper.GracefulTimeout) * time.Second
}

// GetHistoryRetention returns the history retention as a Duration.
// Zero means pruning is disabled.
func (c *Config) GetHistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}

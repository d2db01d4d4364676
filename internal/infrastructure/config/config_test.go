package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
paths:
  config_dir: "/home/u/.config/polychromatic"
  runtime_dir: "/run/user/1000/polychromatic"
database:
  path: "/tmp/history.db"
  wal_mode: true
  busy_timeout: 5
backends:
  openrazer:
    enabled: true
    sysfs_root: "/sys/bus/hid/drivers"
helper:
  graceful_timeout: 10
logging:
  level: "debug"
`
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.ConfigDir != "/home/u/.config/polychromatic" {
		t.Errorf("Paths.ConfigDir = %q", cfg.Paths.ConfigDir)
	}
	if cfg.Database.Path != "/tmp/history.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/history.db")
	}
	if !cfg.Backends.OpenRazer.Enabled {
		t.Error("Backends.OpenRazer.Enabled = false")
	}
	if cfg.Helper.GracefulTimeout != 10 {
		t.Errorf("Helper.GracefulTimeout = %d, want 10", cfg.Helper.GracefulTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load() with missing file error = %v, want defaults", err)
	}
	if cfg.Paths.ConfigDir == "" {
		t.Error("defaults missing config dir")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
paths:
  config_dir: ""
  runtime_dir: ""
`
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected validation error for empty paths, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Paths: PathsConfig{
				ConfigDir:  "/home/u/.config/polychromatic",
				RuntimeDir: "/run/user/1000/polychromatic",
			},
			Database: DatabaseConfig{Path: "/data/history.db", BusyTimeout: 5},
			Helper:   HelperConfig{GracefulTimeout: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing config dir", func(c *Config) { c.Paths.ConfigDir = "" }, true},
		{"missing runtime dir", func(c *Config) { c.Paths.RuntimeDir = "" }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative busy timeout", func(c *Config) { c.Database.BusyTimeout = -1 }, true},
		{"zero graceful timeout", func(c *Config) { c.Helper.GracefulTimeout = 0 }, true},
		{"negative retention", func(c *Config) { c.History.RetentionDays = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("POLYCHROMATIC_CONFIG_DIR", "/custom/config")
	t.Setenv("POLYCHROMATIC_RUNTIME_DIR", "/custom/run")
	t.Setenv("POLYCHROMATIC_DATABASE_PATH", "/custom/history.db")
	t.Setenv("POLYCHROMATIC_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.Paths.ConfigDir != "/custom/config" {
		t.Errorf("Paths.ConfigDir = %q, want %q", cfg.Paths.ConfigDir, "/custom/config")
	}
	if cfg.Paths.RuntimeDir != "/custom/run" {
		t.Errorf("Paths.RuntimeDir = %q, want %q", cfg.Paths.RuntimeDir, "/custom/run")
	}
	if cfg.Database.Path != "/custom/history.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/history.db")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Paths: PathsConfig{ConfigDir: "/cfg"}}

	if got := cfg.StatesDir(); got != "/cfg/states" {
		t.Errorf("StatesDir() = %q", got)
	}
	if got := cfg.EffectsDir(); got != "/cfg/effects" {
		t.Errorf("EffectsDir() = %q", got)
	}
	if got := cfg.PresetsDir(); got != "/cfg/presets" {
		t.Errorf("PresetsDir() = %q", got)
	}
	if got := cfg.PersistenceDir("openrazer"); got != "/cfg/backends/openrazer/persistence" {
		t.Errorf("PersistenceDir() = %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Paths.ConfigDir == "" {
		t.Error("defaultConfig should have non-empty Paths.ConfigDir")
	}
	if cfg.Paths.RuntimeDir == "" {
		t.Error("defaultConfig should have non-empty Paths.RuntimeDir")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if !cfg.Backends.OpenRazer.Enabled {
		t.Error("defaultConfig should enable the OpenRazer backend")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig fails its own validation: %v", err)
	}
}

// Package config handles loading and validating Polychromatic configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - XDG-aware default value handling
//
// A missing config file is not an error: a fresh desktop install runs
// entirely on defaults until the user writes one.
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("~/.config/polychromatic/config.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Paths.ConfigDir)
package config

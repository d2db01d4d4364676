// Package effects reads the versioned JSON documents that describe
// user-authored software effects and presets.
//
// Every document carries a save_format integer. Documents written by a
// newer release than this build are refused outright rather than
// partially loaded; documents that are missing or malformed are
// distinguishable by sentinel so callers can fall back to defaults.
package effects

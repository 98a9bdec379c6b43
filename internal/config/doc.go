// Package config loads, normalizes, and validates reel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs, from the concurrency bound and loudness targets to external
// tool locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, clamped timeouts, and clear validation errors.
package config

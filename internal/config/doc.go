// Package config loads, normalizes, and validates tapetail configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and parses duration strings for the
// collector's cadence and backoff knobs. The Config type centralizes every
// knob the daemon and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

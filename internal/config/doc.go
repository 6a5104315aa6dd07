// Package config loads, normalizes, and validates kometa-merge settings.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the KOMETA_CONFIG_BASE environment fallback. Paths
// that are left empty are derived from config_base so a single setting is
// enough for the usual Kometa layout.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config

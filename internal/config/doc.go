// Package config loads, normalizes, and validates cinephile configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and CINEPHILE_DATASET. The Config type centralizes every knob
// the pipeline, query layer, and HTTP API need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

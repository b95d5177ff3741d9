// Package config loads, normalizes, and validates starreview configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies environment overrides such as
// STARREVIEW_OPENAI_API_KEY and OPENAI_API_KEY. The Config type centralizes every knob the
// CLI and the analysis pipeline need so credentials, tool binaries, and
// frame sampling bounds are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

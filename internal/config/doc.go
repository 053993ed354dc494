// Package config loads, normalizes, and validates pqueue configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PQUEUE_DSN and PQUEUE_QUEUE. The Config type centralizes the store, queue,
// and logging settings the CLI needs to open a queue engine.
//
// Always obtain settings through this package so callers receive sanitized
// paths, canonical log formats, and clear validation errors.
package config

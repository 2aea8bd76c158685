// Package config loads and validates Hearth Core configuration.
//
// Configuration is layered: built-in defaults, then a YAML file, then
// HEARTH_* environment variable overrides. Secrets (JWT signing key,
// Gemini API key, broker credentials) are expected from the environment
// rather than YAML on disk.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//
// Validation happens once at load time; a *Config that Load returned is
// internally consistent and safe to share read-only between goroutines.
package config

// Package database manages the SQLite connection for Hearth Core.
//
// It provides connection setup (WAL mode, busy timeout, enforced foreign
// keys), versioned schema migrations embedded into the binary, and small
// conveniences for transactions and health checks.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// SQLite has a single-writer model; the pool is capped at one connection
// and callers should keep write transactions short.
package database

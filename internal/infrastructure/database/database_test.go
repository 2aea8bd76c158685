package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("Open() = %v, want nil", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenAndHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil", err)
	}
	if db.Path() == "" {
		t.Error("Path() returned empty string")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `CREATE TABLE parents (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("creating parents: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE children (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parents(id))`,
	); err != nil {
		t.Fatalf("creating children: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO children (id, parent_id) VALUES ('c1', 'missing')`,
	); err == nil {
		t.Error("insert with dangling foreign key succeeded, want error")
	}
}

func TestCloseIsIdempotentOnNil(t *testing.T) {
	var db DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on zero DB = %v, want nil", err)
	}
}

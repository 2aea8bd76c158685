package activity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hearthwise/hearth-core/internal/infrastructure/database"
	_ "github.com/hearthwise/hearth-core/migrations"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

func seedDevice(t *testing.T, db *database.DB, ownerID, deviceID, name string) {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.Exec(
		`INSERT OR IGNORE INTO users (id, username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ownerID, "user-"+ownerID, "x", now, now,
	)
	if err != nil {
		t.Fatalf("seeding user %s: %v", ownerID, err)
	}

	_, err = db.Exec(
		`INSERT INTO devices (id, user_id, name, type, status, created_at, updated_at)
		 VALUES (?, ?, ?, 'light', 'off', ?, ?)`,
		deviceID, ownerID, name, now, now,
	)
	if err != nil {
		t.Fatalf("seeding device %s: %v", deviceID, err)
	}
}

func appendEntry(t *testing.T, db *database.DB, repo *SQLiteRepository, entry *Entry) {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if err := repo.CreateTx(ctx, tx, entry); err != nil {
		tx.Rollback()
		t.Fatalf("CreateTx() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	seedDevice(t, db, "u1", "dev-1", "AC")
	ctx := context.Background()

	base := time.Date(2026, 2, 21, 10, 0, 0, 0, time.UTC)
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-1", Action: "turn_on", CreatedAt: base})
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-1", Action: "set_temperature", Value: floatPtr(24), CreatedAt: base.Add(time.Minute)})
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-1", Action: "turn_off", CreatedAt: base.Add(2 * time.Minute)})

	entries, err := repo.ListByOwner(ctx, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ListByOwner() returned %d entries, want 3", len(entries))
	}

	// Oldest first.
	wantActions := []string{"turn_on", "set_temperature", "turn_off"}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Errorf("entries[%d].Action = %q, want %q", i, entries[i].Action, want)
		}
	}

	if entries[0].Value != nil {
		t.Errorf("turn_on entry has value %v, want nil", *entries[0].Value)
	}
	if entries[1].Value == nil || *entries[1].Value != 24 {
		t.Errorf("set_temperature entry value = %v, want 24", entries[1].Value)
	}
}

func TestListOrderWithinOneSecond(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	seedDevice(t, db, "u1", "dev-1", "Fan")
	ctx := context.Background()

	// All inside the same wall-clock second, including fractions whose
	// trailing zeros would reorder under a variable-width format
	// (0.1s vs 0.15s).
	base := time.Date(2026, 2, 21, 10, 0, 0, 0, time.UTC)
	offsets := []time.Duration{
		0,
		50 * time.Millisecond,
		100 * time.Millisecond,
		150 * time.Millisecond,
		150*time.Millisecond + time.Nanosecond,
	}
	for i, off := range offsets {
		appendEntry(t, db, repo, &Entry{
			DeviceID:  "dev-1",
			Action:    "set_speed",
			Value:     floatPtr(float64(i)),
			CreatedAt: base.Add(off),
		})
	}

	entries, err := repo.ListByOwner(ctx, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(entries) != len(offsets) {
		t.Fatalf("ListByOwner() returned %d entries, want %d", len(entries), len(offsets))
	}
	for i := range entries {
		if *entries[i].Value != float64(i) {
			t.Errorf("entries[%d].Value = %v, want %d (insertion order)", i, *entries[i].Value, i)
		}
	}
	if got := entries[1].CreatedAt; !got.Equal(base.Add(50 * time.Millisecond)) {
		t.Errorf("sub-second precision lost: CreatedAt = %v", got)
	}
}

func TestCreateTxRollsBackWithTransaction(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	seedDevice(t, db, "u1", "dev-1", "AC")
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if err := repo.CreateTx(ctx, tx, &Entry{DeviceID: "dev-1", Action: "turn_on"}); err != nil {
		t.Fatalf("CreateTx() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	entries, err := repo.ListByOwner(ctx, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rolled-back entry is visible: %d entries", len(entries))
	}
}

func TestCreateTxInvalidEntry(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	defer tx.Rollback()

	if err := repo.CreateTx(ctx, tx, &Entry{Action: "turn_on"}); !errors.Is(err, ErrEntryInvalid) {
		t.Errorf("CreateTx(no device) = %v, want ErrEntryInvalid", err)
	}
	if err := repo.CreateTx(ctx, tx, &Entry{DeviceID: "dev-1"}); !errors.Is(err, ErrEntryInvalid) {
		t.Errorf("CreateTx(no action) = %v, want ErrEntryInvalid", err)
	}
}

func TestListOwnershipAndFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	seedDevice(t, db, "u1", "dev-1", "AC")
	seedDevice(t, db, "u1", "dev-2", "Fan")
	seedDevice(t, db, "u2", "dev-3", "Heater")
	ctx := context.Background()

	base := time.Date(2026, 2, 21, 10, 0, 0, 0, time.UTC)
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-1", Action: "turn_on", CreatedAt: base})
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-2", Action: "turn_on", CreatedAt: base.Add(time.Minute)})
	appendEntry(t, db, repo, &Entry{DeviceID: "dev-3", Action: "turn_on", CreatedAt: base.Add(2 * time.Minute)})

	entries, err := repo.ListByOwner(ctx, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListByOwner(u1) returned %d entries, want 2", len(entries))
	}

	entries, err = repo.ListByOwner(ctx, "u1", Filter{DeviceID: "dev-2"})
	if err != nil {
		t.Fatalf("ListByOwner(filtered) error = %v", err)
	}
	if len(entries) != 1 || entries[0].DeviceID != "dev-2" {
		t.Errorf("ListByOwner(dev-2) = %+v, want one dev-2 entry", entries)
	}

	// Filtering on another user's device yields nothing.
	entries, err = repo.ListByOwner(ctx, "u1", Filter{DeviceID: "dev-3"})
	if err != nil {
		t.Fatalf("ListByOwner(foreign device) error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListByOwner(foreign device) leaked %d entries", len(entries))
	}
}

func TestListLimitAndOffset(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	seedDevice(t, db, "u1", "dev-1", "Fan")
	ctx := context.Background()

	base := time.Date(2026, 2, 21, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendEntry(t, db, repo, &Entry{
			ID:        uuid.New().String(),
			DeviceID:  "dev-1",
			Action:    "set_speed",
			Value:     floatPtr(float64(i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	entries, err := repo.ListByOwner(ctx, "u1", Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListByOwner(limit 2) returned %d entries", len(entries))
	}
	if *entries[0].Value != 1 || *entries[1].Value != 2 {
		t.Errorf("pagination window = %v, %v; want 1, 2", *entries[0].Value, *entries[1].Value)
	}
}

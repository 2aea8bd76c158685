package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists and lists activity entries.
type Repository interface {
	// CreateTx appends an entry within a caller-owned transaction.
	// The dispatcher pairs it with the device status write so both
	// commit or neither does.
	CreateTx(ctx context.Context, tx *sql.Tx, entry *Entry) error

	// ListByOwner returns a user's entries oldest-first, optionally
	// narrowed to one device. Only devices the user owns contribute rows.
	ListByOwner(ctx context.Context, ownerID string, filter Filter) ([]Entry, error)
}

// createdAtLayout is RFC3339 with fixed-width nanoseconds. Entries
// landing within the same second must still list in insertion order,
// and ORDER BY compares TEXT, so the fraction cannot be variable-width
// (RFC3339Nano trims trailing zeros, which breaks lexicographic order).
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateTx appends an entry within a caller-owned transaction.
func (r *SQLiteRepository) CreateTx(ctx context.Context, tx *sql.Tx, entry *Entry) error {
	if entry.DeviceID == "" || entry.Action == "" {
		return ErrEntryInvalid
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO activity_logs (id, device_id, action, value, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.DeviceID, entry.Action, entry.Value,
		entry.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting activity entry: %w", err)
	}
	return nil
}

// ListByOwner returns a user's entries oldest-first.
//
// Ownership is enforced in the query: joining through devices means
// entries for another user's devices simply never appear, including
// when the filter names a device the caller does not own.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT a.id, a.device_id, a.action, a.value, a.created_at
		FROM activity_logs a
		JOIN devices d ON d.id = a.device_id
		WHERE d.user_id = ?`
	args := []any{ownerID}

	if filter.DeviceID != "" {
		query += " AND a.device_id = ?"
		args = append(args, filter.DeviceID)
	}
	query += " ORDER BY a.created_at ASC, a.id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var value sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Action, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if value.Valid {
			v := value.Float64
			e.Value = &v
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity log: %w", err)
	}
	return entries, nil
}

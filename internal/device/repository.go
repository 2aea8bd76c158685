package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// All queries are scoped to an owner; the core never reads or writes a
// device across ownership boundaries.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// ListByOwner retrieves all devices belonging to a user, ordered by name.
	ListByOwner(ctx context.Context, ownerID string) ([]Device, error)

	// ListAll retrieves every device regardless of owner.
	// Only used to warm the registry cache on startup.
	ListAll(ctx context.Context) ([]Device, error)

	// Create inserts a new device.
	// Returns ErrDeviceExists if the owner already has a device with the
	// same name (case-insensitive).
	Create(ctx context.Context, device *Device) error

	// Update modifies a device's name and type.
	// Returns ErrDeviceNotFound if the device does not exist.
	Update(ctx context.Context, device *Device) error

	// Delete removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, user_id, name, type, status, created_at, updated_at"

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)

	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return device, nil
}

// ListByOwner retrieves all devices belonging to a user, ordered by name.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]Device, error) {
	return r.queryDevices(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id = ? ORDER BY name", ownerID)
}

// ListAll retrieves every device regardless of owner.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, "SELECT "+deviceColumns+" FROM devices ORDER BY name")
}

// queryDevices runs a SELECT over deviceColumns and scans all rows.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = GenerateID()
	}
	now := time.Now().UTC()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	device.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, user_id, name, type, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.OwnerID, device.Name, string(device.Type),
		device.Status.String(),
		device.CreatedAt.Format(time.RFC3339),
		device.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Update modifies a device's name and type.
func (r *SQLiteRepository) Update(ctx context.Context, device *Device) error {
	device.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, type = ?, status = ?, updated_at = ? WHERE id = ?`,
		device.Name, string(device.Type), device.Status.String(),
		device.UpdatedAt.Format(time.RFC3339), device.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("updating device: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a device by ID. Activity log entries cascade via the
// schema's ON DELETE CASCADE.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateStatusTx writes a device's status within a caller-owned transaction.
//
// The dispatcher uses this so the status write and the activity log append
// commit together or not at all.
func (r *SQLiteRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, status Status, updatedAt time.Time) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE devices SET status = ?, updated_at = ? WHERE id = ?",
		status.String(), updatedAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating device status: %w", err)
	}
	return requireRowAffected(result)
}

// scanner abstracts *sql.Row and *sql.Rows for scanDevice.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice reads one device row.
func scanDevice(s scanner) (*Device, error) {
	var d Device
	var typ, status, createdAt, updatedAt string

	if err := s.Scan(&d.ID, &d.OwnerID, &d.Name, &typ, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d.Type = DeviceType(typ)

	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", d.ID, err)
	}
	d.Status = parsed

	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}

	return &d, nil
}

// requireRowAffected maps a zero-row UPDATE/DELETE to ErrDeviceNotFound.
func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}

package device

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides device management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations. All public methods are
// thread-safe. Ownership is enforced here: lookups that name an owner
// never return another user's device, reporting ErrDeviceNotFound
// instead of leaking existence.
type Registry struct {
	repo    Repository
	cache   map[string]*Device // cached devices by ID
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a new device registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Device),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all devices from the repository into the cache.
// Intended to be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		r.cache[d.ID] = d.Clone()
	}

	r.logger.Info("device cache refreshed", "count", len(devices))
	return nil
}

// GetOwned retrieves a device by ID, scoped to an owner.
// Returns ErrDeviceNotFound if the device does not exist or belongs to
// a different user. The returned device is a copy.
func (r *Registry) GetOwned(ctx context.Context, ownerID, id string) (*Device, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if !ok {
		device, err := r.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.cacheMu.Lock()
		r.cache[id] = device.Clone()
		r.cacheMu.Unlock()
		cached = device
	}

	if cached.OwnerID != ownerID {
		return nil, ErrDeviceNotFound
	}
	return cached.Clone(), nil
}

// ListOwned retrieves all devices belonging to a user, ordered by name.
func (r *Registry) ListOwned(ctx context.Context, ownerID string) ([]Device, error) {
	return r.repo.ListByOwner(ctx, ownerID)
}

// FindOwnedByName retrieves an owner's device by case-insensitive exact
// name match. Returns ErrDeviceNotFound when no owned device matches.
func (r *Registry) FindOwnedByName(ctx context.Context, ownerID, name string) (*Device, error) {
	devices, err := r.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if strings.EqualFold(devices[i].Name, name) {
			return devices[i].Clone(), nil
		}
	}
	return nil, ErrDeviceNotFound
}

// CreateDevice validates and inserts a new device for an owner.
// New devices start in the default status.
func (r *Registry) CreateDevice(ctx context.Context, d *Device) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if _, err := RulesFor(d.Type); err != nil {
		return err
	}
	if d.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidName)
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Status = DefaultStatus()

	if err := r.repo.Create(ctx, d); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[d.ID] = d.Clone()
	r.cacheMu.Unlock()

	r.logger.Info("device created", "id", d.ID, "name", d.Name, "type", d.Type)
	return nil
}

// UpdateDevice modifies an owned device's name and type.
// Changing the type resets the status to the default, since the old
// status may not be producible for the new type.
func (r *Registry) UpdateDevice(ctx context.Context, ownerID string, d *Device) error {
	existing, err := r.GetOwned(ctx, ownerID, d.ID)
	if err != nil {
		return err
	}

	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if _, err := RulesFor(d.Type); err != nil {
		return err
	}

	d.Name = strings.TrimSpace(d.Name)
	d.OwnerID = existing.OwnerID
	d.CreatedAt = existing.CreatedAt
	if d.Type == existing.Type {
		d.Status = existing.Status
	} else {
		d.Status = DefaultStatus()
	}

	if err := r.repo.Update(ctx, d); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[d.ID] = d.Clone()
	r.cacheMu.Unlock()

	return nil
}

// DeleteDevice removes an owned device.
func (r *Registry) DeleteDevice(ctx context.Context, ownerID, id string) error {
	if _, err := r.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("device deleted", "id", id)
	return nil
}

// SetCachedStatus updates the cache after a committed status write.
// The repository write itself happens inside the dispatcher's transaction
// (see SQLiteRepository.UpdateStatusTx).
func (r *Registry) SetCachedStatus(id string, status Status, updatedAt time.Time) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if d, ok := r.cache[id]; ok {
		d.Status = status
		d.UpdatedAt = updatedAt
	}
}

// Count returns the number of cached devices.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

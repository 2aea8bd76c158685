package control

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthwise/hearth-core/internal/activity"
	"github.com/hearthwise/hearth-core/internal/assistant"
	"github.com/hearthwise/hearth-core/internal/device"
	"github.com/hearthwise/hearth-core/internal/infrastructure/database"
	"github.com/hearthwise/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthwise/hearth-core/internal/infrastructure/tsdb"
)

// Logger is the minimal logging interface the dispatcher needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// CommandResolver turns free-form text into a bound device command.
// Satisfied by *assistant.Resolver.
type CommandResolver interface {
	Resolve(ctx context.Context, ownerID, text string) (assistant.ResolvedCommand, error)
}

// EventSink receives committed state changes for streaming to clients.
// Satisfied by the API layer's websocket hub.
type EventSink interface {
	DeviceStateChanged(event StateEvent)
}

// StateEvent describes one committed state change. OwnerID scopes
// delivery and is never serialised to clients.
type StateEvent struct {
	OwnerID   string    `json:"-"`
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Result reports a successful dispatch.
type Result struct {
	Device    *device.Device
	NewStatus device.Status
	Message   string
}

// CommandResult is a Result plus how the command text was read.
type CommandResult struct {
	Result
	Action device.Action
	Value  *float64
}

// Dispatcher validates actions, applies transitions, and persists the
// outcome atomically.
//
// The status write and the activity append share one transaction: the
// log never records an action that didn't happen, and no action commits
// unlogged. Everything after the commit - cache update, MQTT, InfluxDB,
// websocket - is best-effort fan-out and can never undo the dispatch.
type Dispatcher struct {
	db         *database.DB
	devices    *device.Registry
	deviceRepo *device.SQLiteRepository
	activities activity.Repository
	resolver   CommandResolver

	bus      *mqtt.Publisher
	recorder *tsdb.Recorder
	events   EventSink

	logger Logger
}

// New creates a dispatcher over the given stores.
func New(db *database.DB, devices *device.Registry, deviceRepo *device.SQLiteRepository, activities activity.Repository) *Dispatcher {
	return &Dispatcher{
		db:         db,
		devices:    devices,
		deviceRepo: deviceRepo,
		activities: activities,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetResolver enables Command with the given resolver.
func (d *Dispatcher) SetResolver(resolver CommandResolver) {
	d.resolver = resolver
}

// SetBus enables state announcements on the given publisher.
func (d *Dispatcher) SetBus(bus *mqtt.Publisher) {
	d.bus = bus
}

// SetRecorder enables time-series recording of numeric state.
func (d *Dispatcher) SetRecorder(recorder *tsdb.Recorder) {
	d.recorder = recorder
}

// SetEventSink enables streaming of committed state changes.
func (d *Dispatcher) SetEventSink(sink EventSink) {
	d.events = sink
}

// Control dispatches a direct action against an owned device.
//
// Failure modes pass through from the layers below: ownership and
// existence from the registry (device.ErrDeviceNotFound), legality from
// the validator (device.ErrUnsupportedAction, device.ErrMissingValue,
// *device.OutOfRangeError), and storage errors from the transaction.
// On any failure the device state is untouched.
func (d *Dispatcher) Control(ctx context.Context, ownerID, deviceID string, action device.Action, value *float64) (Result, error) {
	target, err := d.devices.GetOwned(ctx, ownerID, deviceID)
	if err != nil {
		return Result{}, err
	}
	return d.dispatch(ctx, target, action, value)
}

// Command resolves free-form text into an action and dispatches it.
func (d *Dispatcher) Command(ctx context.Context, ownerID, text string) (CommandResult, error) {
	if d.resolver == nil {
		return CommandResult{}, assistant.ErrUnavailable
	}

	resolved, err := d.resolver.Resolve(ctx, ownerID, text)
	if err != nil {
		return CommandResult{}, err
	}

	result, err := d.dispatch(ctx, resolved.Device, resolved.Action, resolved.Value)
	if err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Result: result, Action: resolved.Action, Value: resolved.Value}, nil
}

// dispatch runs the validate / apply / persist pipeline for a device the
// caller has already been authorised against.
func (d *Dispatcher) dispatch(ctx context.Context, target *device.Device, action device.Action, value *float64) (Result, error) {
	validated, err := device.Validate(target.Type, target.Name, action, value)
	if err != nil {
		return Result{}, err
	}

	newStatus := device.Apply(target.Status, validated)
	now := time.Now().UTC()

	entry := &activity.Entry{
		DeviceID:  target.ID,
		Action:    string(action),
		CreatedAt: now,
	}
	if validated.HasValue {
		v := validated.Value
		entry.Value = &v
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("beginning dispatch transaction: %w", err)
	}

	if err := d.deviceRepo.UpdateStatusTx(ctx, tx, target.ID, newStatus, now); err != nil {
		tx.Rollback()
		return Result{}, err
	}
	if err := d.activities.CreateTx(ctx, tx, entry); err != nil {
		tx.Rollback()
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing dispatch: %w", err)
	}

	d.devices.SetCachedStatus(target.ID, newStatus, now)
	target.Status = newStatus
	target.UpdatedAt = now

	d.logger.Info("action dispatched",
		"device_id", target.ID, "action", action, "status", newStatus.String())

	d.fanOut(target, string(action), newStatus, now)

	return Result{
		Device:    target,
		NewStatus: newStatus,
		Message:   fmt.Sprintf("%s updated to %s", target.Name, newStatus.String()),
	}, nil
}

// fanOut announces a committed state change. Failures are logged and
// dropped; SQLite already holds the truth.
func (d *Dispatcher) fanOut(target *device.Device, action string, status device.Status, at time.Time) {
	if d.bus != nil {
		err := d.bus.PublishState(target.ID, mqtt.StateMessage{
			DeviceID:  target.ID,
			Name:      target.Name,
			Type:      string(target.Type),
			Status:    status.String(),
			Action:    action,
			Timestamp: at,
		})
		if err != nil {
			d.logger.Warn("publishing state to bus", "device_id", target.ID, "error", err)
		}
	}

	if d.recorder != nil {
		setpoint, hasSetpoint := status.Setpoint()
		if v, ok := tsdb.StateValue(status.String(), setpoint, hasSetpoint); ok {
			d.recorder.RecordState(target.ID, string(target.Type), action, v)
		}
	}

	if d.events != nil {
		d.events.DeviceStateChanged(StateEvent{
			OwnerID:   target.OwnerID,
			DeviceID:  target.ID,
			Name:      target.Name,
			Type:      string(target.Type),
			Action:    action,
			Status:    status.String(),
			Timestamp: at,
		})
	}
}

// Package tsdb records numeric device state in InfluxDB.
//
// Recording is optional and strictly best-effort: SQLite remains the
// source of truth, and a failed or disabled recorder never blocks a
// dispatch. Only numeric states are recorded - setpoints as their value,
// power states as 0/1 - so fleets can be graphed without string parsing.
package tsdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hearthwise/hearth-core/internal/infrastructure/config"
)

const connectTimeout = 10 * time.Second

var (
	// ErrNotConnected indicates the recorder is not connected.
	ErrNotConnected = errors.New("tsdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("tsdb: connection failed")

	// ErrDisabled indicates time-series recording is disabled in config.
	ErrDisabled = errors.New("tsdb: disabled in configuration")
)

// Recorder writes device state points with non-blocking batched writes.
// All methods are safe for concurrent use.
type Recorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	connected bool
	mu        sync.RWMutex

	onError func(err error)
}

// Connect creates a recorder and verifies the server with a ping.
func Connect(cfg config.InfluxDBConfig) (*Recorder, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	r := &Recorder{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	r.connected = true

	// Async write failures surface through the error channel.
	go func() {
		for err := range r.writeAPI.Errors() {
			r.mu.RLock()
			callback := r.onError
			r.mu.RUnlock()
			if callback != nil {
				callback(err)
			}
		}
	}()

	return r, nil
}

// SetOnError sets a callback for asynchronous write failures.
func (r *Recorder) SetOnError(callback func(err error)) {
	r.mu.Lock()
	r.onError = callback
	r.mu.Unlock()
}

// IsConnected reports whether the recorder is usable.
func (r *Recorder) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// RecordState writes one state point for a device. Non-blocking; points
// are batched and flushed by the client.
//
// value carries the numeric form of the new status: a setpoint as-is,
// power as 0 or 1.
func (r *Recorder) RecordState(deviceID, deviceType, action string, value float64) {
	if !r.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"type":      deviceType,
			"action":    action,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)
	r.writeAPI.WritePoint(point)
}

// HealthCheck verifies the server responds to a ping.
func (r *Recorder) HealthCheck(ctx context.Context) error {
	if !r.IsConnected() {
		return ErrNotConnected
	}
	healthy, err := r.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}
	if !healthy {
		return fmt.Errorf("tsdb health check: %w", ErrNotConnected)
	}
	return nil
}

// Close flushes pending points and releases the client.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()

	r.writeAPI.Flush()
	r.client.Close()
}

// StateValue maps a status string to its numeric form for recording.
// Returns false for states with no numeric form.
func StateValue(status string, setpoint float64, hasSetpoint bool) (float64, bool) {
	if hasSetpoint {
		return setpoint, true
	}
	switch status {
	case "on":
		return 1, true
	case "off":
		return 0, true
	}
	return 0, false
}

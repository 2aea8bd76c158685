// Package mqtt publishes device state changes to an optional broker.
//
// The bus is one-way: the core announces committed state on retained
// topics so dashboards and bridges can mirror it. Nothing is ever
// accepted from the broker, so a broker outage can delay announcements
// but never corrupt state.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/hearthwise/hearth-core/internal/infrastructure/config"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // milliseconds, paho API takes a plain uint
)

// Logger is compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher wraps paho.mqtt.golang for state announcements.
// All methods are safe for concurrent use.
type Publisher struct {
	client pahomqtt.Client
	qos    byte

	connected bool
	connMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Connect establishes a connection to the broker with auto-reconnect.
func Connect(cfg config.MQTTConfig) (*Publisher, error) {
	p := &Publisher{qos: byte(cfg.QoS), logger: noopLogger{}}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute).
		SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		p.setConnected(true)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.setConnected(false)
		p.log().Warn("mqtt connection lost", "error", err)
	})

	p.client = pahomqtt.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	p.setConnected(true)
	return p, nil
}

// SetLogger sets the logger for connection events.
func (p *Publisher) SetLogger(logger Logger) {
	p.loggerMu.Lock()
	p.logger = logger
	p.loggerMu.Unlock()
}

func (p *Publisher) log() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}

func (p *Publisher) setConnected(v bool) {
	p.connMu.Lock()
	p.connected = v
	p.connMu.Unlock()
}

// IsConnected reports the last known connection state.
func (p *Publisher) IsConnected() bool {
	p.connMu.RLock()
	defer p.connMu.RUnlock()
	return p.connected && p.client.IsConnected()
}

// PublishState announces a device's committed status, retained so late
// joiners see the latest value immediately.
func (p *Publisher) PublishState(deviceID string, state StateMessage) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state message: %w", err)
	}
	return p.publish(DeviceStateTopic(deviceID), payload, true)
}

func (p *Publisher) publish(topic string, payload []byte, retain bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !p.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(topic, p.qos, retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s", ErrTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// HealthCheck verifies the broker connection is alive.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}
	if !p.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Close disconnects from the broker, allowing pending publishes to drain.
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	p.client.Disconnect(disconnectQuiesce)
	p.setConnected(false)
	return nil
}

// StateMessage is the payload published on device state topics.
type StateMessage struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceStateTopic returns the retained state topic for a device.
func DeviceStateTopic(deviceID string) string {
	if deviceID == "" {
		return ""
	}
	return "hearth/devices/" + deviceID + "/state"
}

package device

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Device represents a virtual appliance owned by a user.
// This matches the devices table in migrations/20260221_100000_initial_schema.up.sql.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// OwnerID references the user the device belongs to. All reads and
	// writes are scoped to the owner; it is never serialised to clients.
	OwnerID string `json:"-"`

	// Classification
	Type DeviceType `json:"type"`

	// Current state. Only ever produced by the transition function;
	// see transition.go.
	Status Status `json:"status"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the Device.
// All fields are value types, so a shallow copy is a full copy; the method
// exists so the registry cache can hand out copies callers may mutate.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	return &cpy
}

// DeviceType represents the category of virtual appliance.
// It determines which actions and value ranges are legal; see constraints.go.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// DeviceType constants.
const (
	DeviceTypeLight      DeviceType = "light"
	DeviceTypeFan        DeviceType = "fan"
	DeviceTypeAC         DeviceType = "ac"
	DeviceTypeThermostat DeviceType = "thermostat"
	DeviceTypeHeater     DeviceType = "heater"
)

// AllDeviceTypes returns all valid device type values.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeLight, DeviceTypeFan, DeviceTypeAC,
		DeviceTypeThermostat, DeviceTypeHeater,
	}
}

// Action is a requested operation on a device.
type Action string

// Action constants.
const (
	ActionTurnOn         Action = "turn_on"
	ActionTurnOff        Action = "turn_off"
	ActionSetTemperature Action = "set_temperature"
	ActionSetSpeed       Action = "set_speed"
)

// AllActions returns all valid action values.
func AllActions() []Action {
	return []Action{ActionTurnOn, ActionTurnOff, ActionSetTemperature, ActionSetSpeed}
}

// RequiresValue reports whether the action needs a numeric value.
func (a Action) RequiresValue() bool {
	return a == ActionSetTemperature || a == ActionSetSpeed
}

// ParseAction converts a raw string to an Action.
// Unrecognised strings fail with ErrUnsupportedAction.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	for _, v := range AllActions() {
		if a == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAction, raw)
}

// statusKind discriminates the two status categories.
type statusKind uint8

const (
	statusPower    statusKind = iota // "on" / "off"
	statusSetpoint                   // numeric (temperature or speed)
)

// Status is the current state of a device as a tagged union: either a
// power state ("on"/"off") or a numeric setpoint ("24", "3.5").
//
// The union makes illegal states unrepresentable in memory - a light can
// never hold "24" - while persisting and serialising as the plain string
// the rest of the system expects.
type Status struct {
	kind  statusKind
	on    bool
	value float64
}

// PowerStatus returns an on/off status.
func PowerStatus(on bool) Status {
	return Status{kind: statusPower, on: on}
}

// SetpointStatus returns a numeric status.
func SetpointStatus(value float64) Status {
	return Status{kind: statusSetpoint, value: value}
}

// DefaultStatus is the status assigned to newly created devices.
func DefaultStatus() Status {
	return PowerStatus(false)
}

// IsOn reports whether the status is the power state "on".
func (s Status) IsOn() bool {
	return s.kind == statusPower && s.on
}

// Setpoint returns the numeric value and true when the status is numeric.
func (s Status) Setpoint() (float64, bool) {
	if s.kind != statusSetpoint {
		return 0, false
	}
	return s.value, true
}

// String renders the status in its wire/storage form:
// "on", "off", or the shortest exact decimal form of the setpoint.
func (s Status) String() string {
	if s.kind == statusSetpoint {
		return formatValue(s.value)
	}
	if s.on {
		return "on"
	}
	return "off"
}

// ParseStatus converts a stored status string back into a Status.
// Accepts "on", "off", or any decimal number.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case "on":
		return PowerStatus(true), nil
	case "off":
		return PowerStatus(false), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return SetpointStatus(v), nil
}

// MarshalJSON renders the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the string form.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// formatValue renders a numeric value in its shortest exact decimal form:
// 24 -> "24", 21.5 -> "21.5". Status strings, activity responses, and
// constraint error messages all use this form.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

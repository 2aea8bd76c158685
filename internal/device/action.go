package device

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ActionRequest is a fully resolved request to act on a device.
// It is transient: constructed per request, never persisted.
type ActionRequest struct {
	DeviceID string
	Action   Action
	Value    *float64
}

// ValidatedAction is the validator's approval of an ActionRequest.
// Every ValidatedAction has a defined transition; see Apply.
type ValidatedAction struct {
	Action   Action
	Value    float64
	HasValue bool
}

// OutOfRangeError reports a value outside a device type's legal range.
//
// The message format is a contract with callers and clients:
// "<device> <unit> must be between <min> and <max>",
// e.g. "AC °C must be between 16 and 30".
type OutOfRangeError struct {
	Device string // device name, for the user-facing message
	Unit   string
	Min    float64
	Max    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %s must be between %s and %s",
		e.Device, e.Unit, formatValue(e.Min), formatValue(e.Max))
}

// Unwrap lets errors.Is match ErrValueOutOfRange.
func (e *OutOfRangeError) Unwrap() error {
	return ErrValueOutOfRange
}

// Validate checks that an action is legal for a device type and that any
// supplied value is within range.
//
// It is a pure function of its inputs and the constraint table: no side
// effects, safe for unsynchronised concurrent use. Out-of-range values are
// rejected, never clamped. deviceName only appears in error messages.
//
// Failure modes:
//   - ErrUnknownDeviceType: type has no constraint rule
//   - ErrUnsupportedAction: action not in the type's allowed set
//   - ErrMissingValue: action needs a value and none was supplied
//   - *OutOfRangeError (ErrValueOutOfRange): value outside the type's range
func Validate(deviceType DeviceType, deviceName string, action Action, value *float64) (ValidatedAction, error) {
	rule, err := RulesFor(deviceType)
	if err != nil {
		return ValidatedAction{}, err
	}

	if !rule.Allows(action) {
		return ValidatedAction{}, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedAction, deviceType, action)
	}

	if !action.RequiresValue() {
		return ValidatedAction{Action: action}, nil
	}

	if value == nil {
		return ValidatedAction{}, fmt.Errorf("%w: %s requires a numeric value", ErrMissingValue, action)
	}

	// Every type carrying a value-bearing action has a range in the table,
	// so a nil Range here means the table itself is wrong.
	if rule.Range == nil {
		return ValidatedAction{}, fmt.Errorf("%w: no range defined for %s", ErrUnknownDeviceType, deviceType)
	}

	if !rule.Range.Contains(*value) {
		return ValidatedAction{}, &OutOfRangeError{
			Device: deviceName,
			Unit:   rule.Range.Unit,
			Min:    rule.Range.Min,
			Max:    rule.Range.Max,
		}
	}

	return ValidatedAction{Action: action, Value: *value, HasValue: true}, nil
}

// CoerceValue interprets a decoded JSON value as an optional number.
//
// Accepts float64, integer types, json.Number, and numeric strings (the
// forms a JSON body or an interpreter guess can produce). nil maps to nil.
// Anything else fails with ErrInvalidValueType.
func CoerceValue(raw any) (*float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidValueType, v.String())
		}
		return &f, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidValueType, v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidValueType, raw)
	}
}

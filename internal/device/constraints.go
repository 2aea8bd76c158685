package device

import "fmt"

// ValueRange is an inclusive numeric range with a unit label for
// user-facing error messages.
type ValueRange struct {
	Min  float64
	Max  float64
	Unit string
}

// Contains reports whether v is within the range (bounds inclusive).
func (r ValueRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ConstraintRule describes what a device type can do: the set of legal
// actions and, where applicable, the legal numeric range.
type ConstraintRule struct {
	Allowed []Action
	Range   *ValueRange
}

// Allows reports whether the action is in the rule's allowed set.
func (r ConstraintRule) Allows(a Action) bool {
	for _, v := range r.Allowed {
		if v == a {
			return true
		}
	}
	return false
}

// constraintTable is the static per-type rule set. It is initialised once
// and read-only afterwards, so unsynchronised concurrent reads are safe.
//
//	light       turn_on, turn_off                      -
//	fan         turn_on, turn_off, set_speed           0-5 speed
//	ac          turn_on, turn_off, set_temperature     16-30 °C
//	thermostat  turn_on, turn_off, set_temperature     16-32 °C
//	heater      turn_on, turn_off, set_temperature     18-35 °C
var constraintTable = map[DeviceType]ConstraintRule{
	DeviceTypeLight: {
		Allowed: []Action{ActionTurnOn, ActionTurnOff},
	},
	DeviceTypeFan: {
		Allowed: []Action{ActionTurnOn, ActionTurnOff, ActionSetSpeed},
		Range:   &ValueRange{Min: 0, Max: 5, Unit: "speed"},
	},
	DeviceTypeAC: {
		Allowed: []Action{ActionTurnOn, ActionTurnOff, ActionSetTemperature},
		Range:   &ValueRange{Min: 16, Max: 30, Unit: "°C"},
	},
	DeviceTypeThermostat: {
		Allowed: []Action{ActionTurnOn, ActionTurnOff, ActionSetTemperature},
		Range:   &ValueRange{Min: 16, Max: 32, Unit: "°C"},
	},
	DeviceTypeHeater: {
		Allowed: []Action{ActionTurnOn, ActionTurnOff, ActionSetTemperature},
		Range:   &ValueRange{Min: 18, Max: 35, Unit: "°C"},
	},
}

// RulesFor returns the constraint rule for a device type.
// Fails with ErrUnknownDeviceType for types not in the table.
func RulesFor(t DeviceType) (ConstraintRule, error) {
	rule, ok := constraintTable[t]
	if !ok {
		return ConstraintRule{}, fmt.Errorf("%w: %q", ErrUnknownDeviceType, t)
	}
	return rule, nil
}

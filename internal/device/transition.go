package device

// Apply computes the status that results from a validated action.
//
// It is deterministic and total over validator output: every
// ValidatedAction produced by Validate has a defined transition.
// It is also idempotent - applying turn_on to a device already "on"
// yields "on" again without error.
//
//	turn_on                     -> "on"
//	turn_off                    -> "off"
//	set_temperature / set_speed -> the value's string form
func Apply(current Status, va ValidatedAction) Status {
	switch va.Action {
	case ActionTurnOn:
		return PowerStatus(true)
	case ActionTurnOff:
		return PowerStatus(false)
	case ActionSetTemperature, ActionSetSpeed:
		if va.HasValue {
			return SetpointStatus(va.Value)
		}
	}
	// Unreachable for validator-approved input; keep the current status
	// rather than inventing one.
	return current
}

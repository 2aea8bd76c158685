// Package device implements the device model and the action validation
// core for Hearth.
//
// It contains four cooperating pieces:
//
//   - The constraint table (constraints.go): static per-type rules naming
//     which actions a device type supports and, for value-bearing actions,
//     the inclusive numeric range and its unit. Loaded once, read-only,
//     safe for unsynchronised concurrent reads.
//   - The validator (action.go): a pure function deciding whether a
//     requested action is legal for a device type. Out-of-range values
//     are rejected with the exact user-facing message contract
//     ("<device> <unit> must be between <min> and <max>"), never clamped.
//   - The transition function (transition.go): computes the new status
//     from a validated action. Deterministic, total over validator
//     output, idempotent for power actions.
//   - The registry and repository (registry.go, repository.go): owner-
//     scoped persistence with an in-memory cache, following the
//     repository-behind-registry layering used across the codebase.
//
// Status is a tagged union (power vs setpoint) so that a device can never
// hold a status its type cannot produce; it serialises as the plain
// string ("on", "off", "24") that storage and clients use.
//
// Usage:
//
//	va, err := device.Validate(dev.Type, dev.Name, device.ActionSetTemperature, &value)
//	if err != nil {
//	    return err // precise, user-facing rejection
//	}
//	newStatus := device.Apply(dev.Status, va)
package device

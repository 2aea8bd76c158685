package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist or is
	// not visible to the requesting owner.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when creating a device whose name
	// collides (case-insensitively) with another device of the same owner.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrUnknownDeviceType is returned when a device type has no entry in
	// the constraint table.
	ErrUnknownDeviceType = errors.New("device: unknown type")

	// ErrUnsupportedAction is returned when an action is not in the
	// device type's allowed set.
	ErrUnsupportedAction = errors.New("device: unsupported action")

	// ErrMissingValue is returned when an action requires a numeric value
	// and none was supplied.
	ErrMissingValue = errors.New("device: missing value")

	// ErrInvalidValueType is returned when a supplied value cannot be
	// interpreted as a number.
	ErrInvalidValueType = errors.New("device: value must be a number")

	// ErrValueOutOfRange is returned when a value falls outside the type's
	// range. The concrete error is an *OutOfRangeError carrying bounds.
	ErrValueOutOfRange = errors.New("device: value out of range")

	// ErrInvalidStatus is returned when a stored status string cannot be
	// parsed back into a Status.
	ErrInvalidStatus = errors.New("device: invalid status")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")
)

package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxNameLength bounds device names.
const maxNameLength = 100

// ValidateName checks if a device name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ParseDeviceType converts a raw string to a DeviceType.
// Fails with ErrUnknownDeviceType for types not in the constraint table.
func ParseDeviceType(raw string) (DeviceType, error) {
	t := DeviceType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := constraintTable[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDeviceType, raw)
	}
	return t, nil
}

// GenerateID creates a new UUID for a device.
func GenerateID() string {
	return uuid.New().String()
}

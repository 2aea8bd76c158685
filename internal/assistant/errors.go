package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGuess means the interpreter produced nothing usable from the
	// text. A retry with rephrased input may succeed; the service is fine.
	ErrNoGuess = errors.New("assistant: no usable interpretation")

	// ErrUnavailable means the interpreter service itself failed
	// (network, quota, upstream outage). Distinct from ErrNoGuess so
	// callers can report a service fault rather than blaming the user.
	ErrUnavailable = errors.New("assistant: interpreter unavailable")

	// ErrNotUnderstood means the command could not be resolved into a
	// device and action.
	ErrNotUnderstood = errors.New("assistant: command not understood")
)

// NotFoundError reports a guessed device name that matches nothing in
// the caller's fleet. It keeps the name so the API layer can echo it
// back with a suggestion.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device %q not found", e.Name)
}

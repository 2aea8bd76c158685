package assistant

import "context"

// Guess is an interpreter's reading of a command: a device name as the
// user said it, an action verb, and an optional numeric value. Nothing
// in a Guess is validated yet.
type Guess struct {
	DeviceName string   `json:"device_name"`
	Action     string   `json:"action"`
	Value      *float64 `json:"value,omitempty"`
}

// Hints gives the interpreter context about the caller's fleet so it can
// match loose phrasings ("the bedroom one") to real device names. Names
// only; hints carry no IDs or state.
type Hints struct {
	DeviceNames []string
}

// Interpreter extracts a Guess from free-form text.
//
// Implementations return ErrNoGuess when the text yields nothing usable
// and ErrUnavailable when the service itself is down.
type Interpreter interface {
	Interpret(ctx context.Context, text string, hints Hints) (Guess, error)
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthwise/hearth-core/internal/device"
)

// Logger is the minimal logging interface the resolver needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// ResolvedCommand is a guess bound to a real device the caller owns.
// Action and Value are still unvalidated against the constraint table;
// that stays the dispatcher's job.
type ResolvedCommand struct {
	Device *device.Device
	Action device.Action
	Value  *float64
}

// Resolver binds interpreter guesses to a user's devices.
type Resolver struct {
	registry *device.Registry
	interp   Interpreter
	logger   Logger
}

// NewResolver creates a resolver over the given registry and interpreter.
func NewResolver(registry *device.Registry, interp Interpreter) *Resolver {
	return &Resolver{registry: registry, interp: interp, logger: noopLogger{}}
}

// SetLogger sets the logger for the resolver.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// Resolve turns command text into a ResolvedCommand scoped to ownerID.
//
// Failure modes:
//   - ErrUnavailable: the interpreter service failed
//   - ErrNotUnderstood: no guess could be extracted from the text
//   - *NotFoundError: the guessed device name matches none of the
//     caller's devices
//   - device.ErrUnsupportedAction: the guessed action verb is not one
//     the system knows
func (r *Resolver) Resolve(ctx context.Context, ownerID, text string) (ResolvedCommand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ResolvedCommand{}, fmt.Errorf("%w: empty command", ErrNotUnderstood)
	}

	guess, err := r.interpret(ctx, ownerID, text)
	if err != nil {
		return ResolvedCommand{}, err
	}
	r.logger.Debug("command interpreted",
		"device_name", guess.DeviceName, "action", guess.Action)

	d, err := r.registry.FindOwnedByName(ctx, ownerID, guess.DeviceName)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return ResolvedCommand{}, &NotFoundError{Name: guess.DeviceName}
		}
		return ResolvedCommand{}, err
	}

	action, err := device.ParseAction(strings.ToLower(strings.TrimSpace(guess.Action)))
	if err != nil {
		return ResolvedCommand{}, err
	}

	return ResolvedCommand{Device: d, Action: action, Value: guess.Value}, nil
}

// interpret asks the configured interpreter first and falls back to the
// built-in phrase parser when it yields nothing. Service faults are not
// papered over: ErrUnavailable propagates so the caller can distinguish
// "the assistant is down" from "I didn't get that".
func (r *Resolver) interpret(ctx context.Context, ownerID, text string) (Guess, error) {
	hints := r.hints(ctx, ownerID)

	if r.interp != nil {
		guess, err := r.interp.Interpret(ctx, text, hints)
		if err == nil {
			return guess, nil
		}
		if errors.Is(err, ErrUnavailable) {
			return Guess{}, err
		}
		r.logger.Warn("interpreter gave no guess, trying phrase parser", "error", err)
	}

	if guess, ok := parsePhrase(text, hints.DeviceNames); ok {
		return guess, nil
	}
	return Guess{}, ErrNotUnderstood
}

func (r *Resolver) hints(ctx context.Context, ownerID string) Hints {
	devices, err := r.registry.ListOwned(ctx, ownerID)
	if err != nil {
		r.logger.Warn("listing devices for hints", "error", err)
		return Hints{}
	}
	names := make([]string, 0, len(devices))
	for i := range devices {
		names = append(names, devices[i].Name)
	}
	return Hints{DeviceNames: names}
}

// parsePhrase handles the common fixed phrasings without any model:
//
//	turn on <name> / turn <name> on
//	turn off <name> / turn <name> off
//	set <name> to <number>
//
// For "set" the action is chosen by whichever known device name matches,
// so it stays deterministic: speed for fans, temperature otherwise.
func parsePhrase(text string, knownNames []string) (Guess, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = strings.TrimSuffix(lower, ".")

	for _, prefix := range []string{"turn on ", "switch on "} {
		if rest, ok := strings.CutPrefix(lower, prefix); ok {
			return Guess{DeviceName: matchName(rest, knownNames), Action: "turn_on"}, true
		}
	}
	for _, prefix := range []string{"turn off ", "switch off "} {
		if rest, ok := strings.CutPrefix(lower, prefix); ok {
			return Guess{DeviceName: matchName(rest, knownNames), Action: "turn_off"}, true
		}
	}
	if rest, ok := strings.CutPrefix(lower, "turn "); ok {
		if name, ok := strings.CutSuffix(rest, " on"); ok {
			return Guess{DeviceName: matchName(name, knownNames), Action: "turn_on"}, true
		}
		if name, ok := strings.CutSuffix(rest, " off"); ok {
			return Guess{DeviceName: matchName(name, knownNames), Action: "turn_off"}, true
		}
	}

	if rest, ok := strings.CutPrefix(lower, "set "); ok {
		name, valueText, found := strings.Cut(rest, " to ")
		if !found {
			return Guess{}, false
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(valueText), 64)
		if err != nil {
			return Guess{}, false
		}
		matched := matchName(name, knownNames)
		action := "set_temperature"
		if strings.Contains(strings.ToLower(matched), "fan") {
			action = "set_speed"
		}
		return Guess{DeviceName: matched, Action: action, Value: &value}, true
	}

	return Guess{}, false
}

// matchName maps a spoken fragment to a known device name, dropping a
// leading article and preferring case-insensitive exact matches. Unknown
// fragments pass through unchanged so the not-found path can echo them.
func matchName(fragment string, knownNames []string) string {
	fragment = strings.TrimSpace(fragment)
	fragment = strings.TrimPrefix(fragment, "the ")

	for _, name := range knownNames {
		if strings.EqualFold(name, fragment) {
			return name
		}
	}
	return fragment
}

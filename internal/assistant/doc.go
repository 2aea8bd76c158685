// Package assistant turns free-form text like "turn on the bedroom fan"
// into a concrete device command.
//
// The split is deliberate: an Interpreter (Gemini, or anything else that
// satisfies the interface) only guesses a device name, an action, and an
// optional value from the text. The Resolver then binds that guess to the
// caller's own devices. The interpreter never sees device IDs and its
// output is never trusted - everything it returns is re-validated against
// the registry and the constraint table before any state changes.
package assistant

// Package auth provides authentication for Hearth Core.
//
// It implements:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens validated by signature only
//   - Rotating refresh tokens, stored hashed and revocable for logout
//
// There is no role hierarchy: every account is an ordinary user that
// owns its own device fleet, and all authorisation reduces to ownership
// checks in the device registry.
package auth

package auth

import "errors"

// Use errors.Is() to check for these in calling code.
var (
	// ErrInvalidCredentials is returned for a bad username or password.
	// Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid is returned for a malformed, forged, or unknown token.
	ErrTokenInvalid = errors.New("auth: token invalid")

	// ErrTokenExpired is returned for a refresh token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenRevoked is returned for a refresh token revoked by logout.
	ErrTokenRevoked = errors.New("auth: token revoked")

	// ErrUserNotFound is returned when a user lookup matches nothing.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("auth: username already taken")

	// ErrInvalidUsername is returned for a username that fails format rules.
	ErrInvalidUsername = errors.New("auth: invalid username")

	// ErrWeakPassword is returned for a password below the minimum length.
	ErrWeakPassword = errors.New("auth: password too short")
)

// Package common defines shared constants and sentinel errors used across
// the server, the transports and the client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Input errors: unparseable or missing required fields.
	ErrorMalformedInput = errors.New("malformed input")

	// Lookup errors: unknown user, unknown recipient, absent or foreign message.
	ErrorNotFound = errors.New("not found")

	// Signup of an existing username.
	ErrorAlreadyExists = errors.New("already exists")

	// Missing, unknown or revoked session token.
	ErrorUnauthenticated = errors.New("unauthenticated")

	// Wrong password at login.
	ErrorUnauthorized = errors.New("unauthorized")

	// Backend failures. The detail is logged, never returned to callers.
	ErrorInternal = errors.New("internal error")
)

// Package models declares the records persisted by the server repositories.
package models

import "time"

// User is a registered account. Password holds the encoded output of the
// configured password scheme, never the raw secret (unless the plain scheme
// is in use).
type User struct {
	Username  string
	Password  string
	CreatedAt time.Time
}

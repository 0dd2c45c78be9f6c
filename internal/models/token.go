package models

import "time"

// AuthToken is an opaque bearer credential minted at login.
// Only a SHA-256 digest of the secret is kept at rest; the
// plaintext is returned to the caller once and never stored.
type AuthToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
}

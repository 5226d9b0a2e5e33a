package domain

import "time"

// UserRegisteredEvent represents the payload for arch.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Name         string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent represents the payload for arch.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Fenced    bool
	Metadata  map[string]any
}

// TokenRevokedEvent represents the payload for arch.token.revoked messages.
// TokenDigest is a sha256 of the credential; the raw value never leaves the
// session service.
type TokenRevokedEvent struct {
	EventID     string
	UserID      string
	TokenDigest string
	Reason      string
	RevokedAt   time.Time
	Metadata    map[string]any
}

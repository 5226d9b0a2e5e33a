package domain

import "time"

// BlacklistEntry records one specific credential revoked ahead of its natural
// expiry. Entries are keyed by the credential's digest, never the raw value.
type BlacklistEntry struct {
	Reason        string
	BlacklistedAt time.Time
	UserID        string
	Email         string
}

// UserFence marks the instant below which every credential issued for a user
// is rejected, regardless of individual blacklist state.
type UserFence struct {
	InvalidatedAt time.Time
	Reason        string
}

// Revocation reasons recorded alongside blacklist entries and fences.
const (
	RevocationReasonLogout         = "logout"
	RevocationReasonRotation       = "rotation"
	RevocationReasonPasswordChange = "password_change"
)

package domain

import "time"

// RevocationEntry is one blocked token id.
//
// ExpiresAt is the blocked token's own expiry. Once it passes the entry can be
// purged, since the token would be rejected as expired anyway. A zero
// ExpiresAt is never purged.
type RevocationEntry struct {
	TokenID   string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// Purgeable reports whether the entry can be dropped at now.
func (e RevocationEntry) Purgeable(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

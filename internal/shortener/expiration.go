package shortener

import "time"

// Retention is how long a link stays resolvable after creation.
const Retention = 30 * 24 * time.Hour

// ExpiresAt computes the expiry for a link created at createdAt.
func ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(Retention)
}

// IsExpired reports whether link is expired at now. The expiry instant itself
// counts as expired.
func IsExpired(link *Link, now time.Time) bool {
	return !now.Before(link.ExpiresAt)
}

package domain

import "time"

// Claims is the subset of a session token the client reads.
// The client never trusts these for authorization; the backend does that.
type Claims struct {
	Subject   string
	Email     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the claims are expired at now, allowing leeway.
func (c *Claims) ExpiredAt(now time.Time, leeway time.Duration) bool {
	return !now.Before(c.ExpiresAt.Add(leeway))
}

// TTL returns the time remaining before expiry at now (negative if expired).
func (c *Claims) TTL(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

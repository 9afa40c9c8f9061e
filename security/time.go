package security

import "time"

// DefaultClockSkewGracePeriod is the grace period applied to token and
// authorization code expiry checks. It absorbs typical NTP drift between
// the issuing and verifying hosts without meaningfully extending token
// lifetime.
const DefaultClockSkewGracePeriod = 5 * time.Second

// IsExpired checks expiry with the default clock skew grace period.
func IsExpired(expiresAt time.Time) bool {
	return IsExpiredWithGracePeriod(expiresAt, DefaultClockSkewGracePeriod)
}

// IsExpiredWithGracePeriod checks expiry with a custom grace period. A
// zero expiry means no expiration.
func IsExpiredWithGracePeriod(expiresAt time.Time, gracePeriod time.Duration) bool {
	if expiresAt.IsZero() {
		return false
	}
	return time.Now().After(expiresAt.Add(gracePeriod))
}

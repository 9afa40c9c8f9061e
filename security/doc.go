// Package security provides security-related functionality for the
// authorization server: audit logging with PII hashing, per-identifier
// rate limiting, and clock-skew-aware expiry checks.
//
// # Rate Limiting
//
// The RateLimiter provides per-identifier rate limiting using a token
// bucket algorithm with automatic memory management through LRU eviction.
// When the configured maximum number of tracked identifiers is reached,
// the least recently used entries are evicted first, so legitimate
// repeat callers are less likely to lose their bucket than one-shot
// attack sources.
//
//	limiter := security.NewRateLimiter(10, 20, logger)
//	defer limiter.Stop()
//
//	if !limiter.Allow(clientIP) {
//		// rate limit exceeded
//	}
//
// # Audit Logging
//
// The Auditor emits structured security events through log/slog. User
// identifiers are hashed before logging; token values are never logged.
package security

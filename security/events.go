package security

// Event type constants for security audit logging. These ensure
// consistency across the codebase and prevent typos when logging
// security-relevant events.
const (
	// EventClientAuthenticated is logged when a client authenticates
	// successfully at the token or revocation endpoint.
	EventClientAuthenticated = "client_authenticated"

	// EventTokenIssued is logged when a new access token is issued.
	EventTokenIssued = "token_issued"

	// EventTokenRevoked is logged when a token is revoked.
	EventTokenRevoked = "token_revoked"

	// EventAuthFailure is logged when client or resource-owner
	// authentication fails.
	EventAuthFailure = "auth_failure"

	// EventRateLimitExceeded is logged when a rate limit is exceeded.
	EventRateLimitExceeded = "rate_limit_exceeded"

	// EventAuthorizationCodeIssued is logged when an authorization code
	// is issued.
	EventAuthorizationCodeIssued = "authorization_code_issued"

	// EventAuthorizationCodeReuseDetected is logged when an authorization
	// code is presented twice (theft indicator).
	EventAuthorizationCodeReuseDetected = "authorization_code_reuse_detected"

	// EventRefreshTokenReuseDetected is logged when a revoked refresh
	// token is presented.
	EventRefreshTokenReuseDetected = "refresh_token_reuse_detected"
)

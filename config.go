package oauth

import (
	"log/slog"
	"time"
)

// Config holds the authorization server configuration.
type Config struct {
	// GrantExpiry overrides expires_in per grant type, in seconds.
	// Grant types without an override use the built-in defaults.
	GrantExpiry map[string]int64

	// AccessTokenGenerator overrides the access token value generator.
	// Default: opaque random tokens with 42 bytes of entropy. Ignored
	// when JWT.Enabled is true and no explicit generator is provided.
	AccessTokenGenerator TokenGenerateFunc

	// EnableRefreshToken turns on refresh token issuance. Default: off.
	EnableRefreshToken bool

	// RefreshTokenGenerator overrides the refresh token value generator.
	// Default: opaque random tokens with 48 bytes of entropy. Implies
	// EnableRefreshToken.
	RefreshTokenGenerator TokenGenerateFunc

	// AuthorizationCodeTTL is how long authorization codes are valid.
	// Default: 10 minutes.
	AuthorizationCodeTTL time.Duration

	// JWT configures signed access tokens. When disabled, access tokens
	// are opaque random values.
	JWT JWTConfig

	// ErrorURIs maps OAuth error codes to documentation URIs attached
	// to error response bodies as error_uri.
	ErrorURIs map[string]string

	// RateLimit configures per-caller rate limiting on the token and
	// revocation endpoints. Zero disables limiting.
	RateLimit RateLimitConfig

	// EnableAuditLogging enables security audit logging. Sensitive
	// values are hashed before logging.
	EnableAuditLogging bool

	// Logger for structured logging (optional, uses slog.Default if not
	// provided).
	Logger *slog.Logger
}

// JWTConfig holds signed access token settings. When Enabled, Issuer and
// one of Key or KeyPath are required; missing pieces abort server
// construction.
type JWTConfig struct {
	// Enabled turns on signed JWT access tokens.
	Enabled bool

	// Issuer is the iss claim of issued tokens.
	Issuer string

	// Key is raw signing key material for the configured algorithm:
	// secret bytes for HS*, PEM or a parsed private key otherwise.
	Key any

	// KeyPath reads the signing key from a file at server construction
	// instead of supplying Key directly.
	KeyPath string

	// Algorithm is the JOSE algorithm identifier, e.g. "RS256".
	Algorithm string
}

// RateLimitConfig holds token endpoint rate limiting configuration.
type RateLimitConfig struct {
	// Rate is requests per second allowed per identifier. Zero disables
	// limiting.
	Rate int

	// Burst is the maximum burst size allowed per identifier.
	Burst int
}

// applyDefaults fills zero-valued configuration fields.
func (c *Config) applyDefaults() {
	if c.AuthorizationCodeTTL == 0 {
		c.AuthorizationCodeTTL = 10 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

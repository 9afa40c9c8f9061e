package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/giantswarm/oauth-server/storage"
)

const (
	// DefaultExpiresIn is the fallback expiry for grant types without a
	// configured or default entry.
	DefaultExpiresIn = 3600

	// DefaultAccessTokenEntropy is the entropy, in bytes, behind a
	// default opaque access token.
	DefaultAccessTokenEntropy = 42

	// DefaultRefreshTokenEntropy is the entropy, in bytes, behind a
	// default opaque refresh token.
	DefaultRefreshTokenEntropy = 48
)

// defaultGrantExpiry holds the built-in expires_in values per grant type.
var defaultGrantExpiry = map[string]int64{
	"authorization_code": 864000,
	"implicit":           3600,
	"password":           864000,
	"client_credential":  864000,
}

// GenerateFunc produces one token value. Implementations may ignore any
// of the arguments; the default random generators use none of them.
type GenerateFunc func(grantType string, client *storage.Client, user *storage.User, scope string) (string, error)

// ExpiresFunc resolves the expires_in value for a grant type.
type ExpiresFunc func(client *storage.Client, grantType string) int64

// Bearer is a complete bearer token response body per RFC 6750.
type Bearer struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// RandomGenerator returns a GenerateFunc producing URL-safe random tokens
// backed by entropyBytes bytes from crypto/rand.
func RandomGenerator(entropyBytes int) GenerateFunc {
	return func(string, *storage.Client, *storage.User, string) (string, error) {
		buf := make([]byte, entropyBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("token: failed to read entropy: %w", err)
		}
		return base64.RawURLEncoding.EncodeToString(buf), nil
	}
}

// NewExpiresResolver builds an ExpiresFunc from the built-in grant expiry
// table with per-grant-type overrides applied on top. Grant types absent
// from both fall back to DefaultExpiresIn.
func NewExpiresResolver(overrides map[string]int64) ExpiresFunc {
	table := make(map[string]int64, len(defaultGrantExpiry)+len(overrides))
	for grantType, seconds := range defaultGrantExpiry {
		table[grantType] = seconds
	}
	for grantType, seconds := range overrides {
		table[grantType] = seconds
	}
	return func(_ *storage.Client, grantType string) int64 {
		if seconds, ok := table[grantType]; ok {
			return seconds
		}
		// The built-in table carries the client credentials entry under
		// the singular key; accept the RFC 6749 grant type name too.
		if grantType == "client_credentials" {
			if seconds, ok := table["client_credential"]; ok {
				return seconds
			}
		}
		return DefaultExpiresIn
	}
}

// Generator assembles bearer tokens. The zero value is not usable; use
// NewGenerator.
type Generator struct {
	accessToken  GenerateFunc
	refreshToken GenerateFunc // nil disables refresh tokens
	expiresIn    ExpiresFunc
}

// Option configures a Generator.
type Option func(*Generator)

// WithAccessTokenGenerator overrides the access token value generator.
func WithAccessTokenGenerator(fn GenerateFunc) Option {
	return func(g *Generator) { g.accessToken = fn }
}

// WithRefreshTokenGenerator enables refresh tokens using fn. Passing the
// default entropy explicitly: WithRefreshTokenGenerator(RandomGenerator(48)).
func WithRefreshTokenGenerator(fn GenerateFunc) Option {
	return func(g *Generator) { g.refreshToken = fn }
}

// WithExpiresResolver overrides the expiry resolver.
func WithExpiresResolver(fn ExpiresFunc) Option {
	return func(g *Generator) { g.expiresIn = fn }
}

// NewGenerator creates a bearer token generator. Without options it
// produces 42-byte-entropy opaque access tokens, no refresh tokens, and
// the built-in grant expiry table.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		accessToken: RandomGenerator(DefaultAccessTokenEntropy),
		expiresIn:   NewExpiresResolver(nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Issue produces a bearer token for a successful grant. A refresh token
// is included only when a refresh generator is configured and the grant
// asks for one. Issue has no side effects beyond value generation;
// persistence belongs to the server lifecycle.
func (g *Generator) Issue(client *storage.Client, grantType string, user *storage.User, scope string, includeRefresh bool) (*Bearer, error) {
	accessToken, err := g.accessToken(grantType, client, user, scope)
	if err != nil {
		return nil, fmt.Errorf("token: access token generation failed: %w", err)
	}

	bearer := &Bearer{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   g.expiresIn(client, grantType),
		Scope:       scope,
	}

	if includeRefresh && g.refreshToken != nil {
		refreshToken, err := g.refreshToken(grantType, client, user, scope)
		if err != nil {
			return nil, fmt.Errorf("token: refresh token generation failed: %w", err)
		}
		bearer.RefreshToken = refreshToken
	}

	return bearer, nil
}

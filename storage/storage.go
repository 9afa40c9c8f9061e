package storage

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/giantswarm/oauth-server/internal/helpers"
)

var (
	// ErrNotFound is returned by lookups when no matching record exists.
	ErrNotFound = errors.New("storage: not found")

	// ErrCodeExpired is returned when an authorization code is past its
	// expiry.
	ErrCodeExpired = errors.New("storage: authorization code expired")

	// ErrCodeAlreadyUsed is returned when an authorization code has
	// already been exchanged. Callers treat this as a replay signal.
	ErrCodeAlreadyUsed = errors.New("storage: authorization code already used")
)

// ClientStore resolves and persists registered OAuth clients.
// All methods accept context.Context for tracing and cancellation.
type ClientStore interface {
	// GetClient retrieves a client by ID. Returns ErrNotFound when the
	// client is unknown.
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// ValidateClientSecret checks a client's secret against the stored
	// hash. Must not leak timing information about the stored secret.
	ValidateClientSecret(ctx context.Context, clientID, clientSecret string) error

	// SaveClient saves a registered client.
	SaveClient(ctx context.Context, client *Client) error
}

// TokenStore persists issued bearer tokens and supports revocation.
// All methods accept context.Context for tracing and cancellation.
type TokenStore interface {
	// SaveToken persists a newly issued token record.
	SaveToken(ctx context.Context, token *Token) error

	// GetByAccessToken retrieves a token record by its access token value.
	GetByAccessToken(ctx context.Context, accessToken string) (*Token, error)

	// GetByRefreshToken retrieves a token record by its refresh token value.
	GetByRefreshToken(ctx context.Context, refreshToken string) (*Token, error)

	// RevokeToken marks a token record revoked. Revoking an already
	// revoked token is not an error.
	RevokeToken(ctx context.Context, token *Token) error
}

// FlowStore persists single-use authorization codes for the
// authorization_code grant.
type FlowStore interface {
	// SaveAuthorizationCode saves an issued authorization code.
	SaveAuthorizationCode(ctx context.Context, code *AuthorizationCode) error

	// AtomicCheckAndMarkCodeUsed atomically loads a code and marks it
	// used. Returns ErrNotFound for unknown codes and an error for
	// expired or already used codes. The check-and-mark MUST be atomic
	// to prevent concurrent code exchange.
	AtomicCheckAndMarkCodeUsed(ctx context.Context, code string) (*AuthorizationCode, error)

	// DeleteAuthorizationCode removes an authorization code.
	DeleteAuthorizationCode(ctx context.Context, code string) error
}

// UserAuthenticator validates resource-owner credentials for the password
// grant. It is supplied by the host application; the server core never
// stores user credentials.
type UserAuthenticator interface {
	// Authenticate returns the user matching the credentials, or an
	// error when they do not match.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}

// Client is a registered OAuth client.
type Client struct {
	ClientID         string
	ClientSecretHash string // bcrypt hash; empty for public clients
	ClientType       string // "public" or "confidential"
	RedirectURIs     []string
	GrantTypes       []string
	ResponseTypes    []string
	ClientName       string
	Scopes           []string
	CreatedAt        time.Time
}

// IsConfidential reports whether the client holds a secret.
func (c *Client) IsConfidential() bool {
	return c.ClientType != "public"
}

// AllowsGrantType reports whether the client may use the grant type.
// A client with no registered grant types may use any.
func (c *Client) AllowsGrantType(grantType string) bool {
	if len(c.GrantTypes) == 0 {
		return true
	}
	for _, gt := range c.GrantTypes {
		if gt == grantType {
			return true
		}
	}
	return false
}

// AllowsResponseType reports whether the client may use the response type.
func (c *Client) AllowsResponseType(responseType string) bool {
	if len(c.ResponseTypes) == 0 {
		return true
	}
	for _, rt := range c.ResponseTypes {
		if rt == responseType {
			return true
		}
	}
	return false
}

// HasRedirectURI reports whether uri is registered for the client.
// Loopback redirect URIs match regardless of port, so native apps can
// bind an ephemeral port per RFC 8252 section 7.3.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
		if loopbackRedirectMatch(registered, uri) {
			return true
		}
	}
	return false
}

// loopbackRedirectMatch compares two redirect URIs ignoring the port
// when both point at a loopback host.
func loopbackRedirectMatch(registered, requested string) bool {
	regURL, err := url.Parse(registered)
	if err != nil {
		return false
	}
	reqURL, err := url.Parse(requested)
	if err != nil {
		return false
	}
	if !helpers.IsLoopbackHostname(regURL.Hostname()) || !helpers.IsLoopbackHostname(reqURL.Hostname()) {
		return false
	}
	return regURL.Scheme == reqURL.Scheme &&
		regURL.Hostname() == reqURL.Hostname() &&
		regURL.Path == reqURL.Path
}

// DefaultRedirectURI returns the sole registered redirect URI, or empty
// when the client has zero or several.
func (c *Client) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 1 {
		return c.RedirectURIs[0]
	}
	return ""
}

// Token is a persisted bearer token record. Created exactly once per
// issuance and never mutated except for revocation.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ClientID     string
	UserID       string
	Scope        string
	GrantType    string
	ExpiresIn    int64 // seconds
	IssuedAt     time.Time
	Revoked      bool
	RevokedAt    time.Time
}

// ExpiresAt returns the absolute access token expiry.
func (t *Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the access token has expired at now.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

// AuthorizationCode is a single-use code issued by the authorization
// endpoint and exchanged at the token endpoint.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	RedirectURI string
	Scope       string
	UserID      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
}

// User identifies an authenticated resource owner.
type User struct {
	ID       string
	Username string
}

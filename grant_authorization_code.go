package oauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/oauth-server/security"
	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// AuthorizationCodeGrant implements the authorization code grant
// (RFC 6749 section 4.1). Codes are single use; concurrent exchange of
// the same code is rejected by the atomic check-and-mark in storage.
type AuthorizationCodeGrant struct {
	baseGrant
}

// NewAuthorizationCodeGrant creates an authorization code grant.
func NewAuthorizationCodeGrant() *AuthorizationCodeGrant {
	return &AuthorizationCodeGrant{}
}

// GrantType returns "authorization_code".
func (g *AuthorizationCodeGrant) GrantType() string {
	return "authorization_code"
}

// ResponseType returns "code".
func (g *AuthorizationCodeGrant) ResponseType() string {
	return "code"
}

// ErrorsInFragment returns false: code grant errors use the query string.
func (g *AuthorizationCodeGrant) ErrorsInFragment() bool {
	return false
}

// ValidateAuthorizationRequest checks the authorization request and
// resolves the client and effective redirect URI. Redirect URI errors
// are never redirected; they surface to the caller directly.
func (g *AuthorizationCodeGrant) ValidateAuthorizationRequest(ctx context.Context, r *Request) (*storage.Client, string, error) {
	clientID := r.Param("client_id")
	if clientID == "" {
		return nil, "", ErrInvalidRequest("client_id is required")
	}

	client, err := g.server.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, "", ErrInvalidClient("unknown client")
	}

	redirectURI, err := resolveRedirectURI(client, r.RedirectURI())
	if err != nil {
		return nil, "", err
	}

	if !client.AllowsResponseType(g.ResponseType()) {
		return client, redirectURI, ErrUnauthorizedClient("client is not authorized for response type code")
	}
	if !client.AllowsGrantType(g.GrantType()) {
		return client, redirectURI, ErrUnauthorizedClient("client is not authorized for grant type authorization_code")
	}
	if _, err := g.server.validateScope(client, r.Scope()); err != nil {
		return client, redirectURI, err
	}

	return client, redirectURI, nil
}

// CreateAuthorizationResponse finishes the flow after the resource owner
// decided. A nil grantUser denies the request with an access_denied
// redirect; otherwise a fresh single-use code is bound to the client,
// user, scope, and redirect URI.
func (g *AuthorizationCodeGrant) CreateAuthorizationResponse(ctx context.Context, r *Request, client *storage.Client, redirectURI string, grantUser *storage.User) (*Response, error) {
	state := r.State()

	if grantUser == nil {
		location, err := addQueryParams(redirectURI, map[string]string{
			"error": ErrorCodeAccessDenied,
			"state": state,
		})
		if err != nil {
			return nil, ErrServerError("failed to build redirect")
		}
		return newRedirectResponse(location), nil
	}

	scope, err := g.server.validateScope(client, r.Scope())
	if err != nil {
		return nil, err
	}

	code := oauth2.GenerateVerifier()
	now := time.Now()
	record := &storage.AuthorizationCode{
		Code:        code,
		ClientID:    client.ClientID,
		RedirectURI: r.RedirectURI(), // empty when the default URI was used
		Scope:       scope,
		UserID:      grantUser.ID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(g.server.codeTTL),
	}
	if err := g.server.flows.SaveAuthorizationCode(ctx, record); err != nil {
		return nil, ErrServerError("failed to save authorization code")
	}

	g.server.auditor.LogEvent(security.Event{
		Type:     security.EventAuthorizationCodeIssued,
		ClientID: client.ClientID,
		UserID:   grantUser.ID,
	})

	location, err := addQueryParams(redirectURI, map[string]string{
		"code":  code,
		"state": state,
	})
	if err != nil {
		return nil, ErrServerError("failed to build redirect")
	}
	return newRedirectResponse(location), nil
}

// Token exchanges an authorization code for a bearer token.
func (g *AuthorizationCodeGrant) Token(ctx context.Context, r *Request, client *storage.Client) (*token.Bearer, error) {
	if err := g.checkGrantType(client, g.GrantType()); err != nil {
		return nil, err
	}

	codeValue := r.Code()
	if codeValue == "" {
		return nil, ErrInvalidRequest("code is required")
	}

	code, err := g.server.flows.AtomicCheckAndMarkCodeUsed(ctx, codeValue)
	if err != nil {
		if errors.Is(err, storage.ErrCodeAlreadyUsed) {
			g.server.auditor.LogEvent(security.Event{
				Type:     security.EventAuthorizationCodeReuseDetected,
				ClientID: client.ClientID,
			})
		}
		return nil, ErrInvalidGrant("invalid or expired authorization code")
	}

	if code.ClientID != client.ClientID {
		return nil, ErrInvalidGrant("authorization code was issued to another client")
	}
	if code.RedirectURI != "" && code.RedirectURI != r.RedirectURI() {
		return nil, ErrInvalidGrant("redirect_uri does not match the authorization request")
	}

	bearer, err := g.server.issueToken(ctx, client, g.GrantType(), &storage.User{ID: code.UserID}, code.Scope, true)
	if err != nil {
		return nil, err
	}

	// Best effort; an expired leftover is also swept by storage cleanup.
	_ = g.server.flows.DeleteAuthorizationCode(ctx, codeValue)

	return bearer, nil
}

// resolveRedirectURI picks the effective redirect URI for an
// authorization request: the requested URI when registered, the sole
// registered URI when the request omits one.
func resolveRedirectURI(client *storage.Client, requested string) (string, error) {
	if requested != "" {
		if !client.HasRedirectURI(requested) {
			return "", ErrInvalidRequest("redirect_uri is not registered for this client")
		}
		return requested, nil
	}
	uri := client.DefaultRedirectURI()
	if uri == "" {
		return "", ErrInvalidRequest("redirect_uri is required")
	}
	return uri, nil
}

// addQueryParams returns base with params merged into its query string.
// Empty values are dropped.
func addQueryParams(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, value := range params {
		if value != "" {
			q.Set(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

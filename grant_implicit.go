package oauth

import (
	"context"
	"net/url"
	"strconv"

	"github.com/giantswarm/oauth-server/storage"
)

// ImplicitGrant implements the implicit grant (RFC 6749 section 4.2).
// The access token is delivered in the redirect fragment and no refresh
// token is ever issued.
type ImplicitGrant struct {
	baseGrant
}

// NewImplicitGrant creates an implicit grant.
func NewImplicitGrant() *ImplicitGrant {
	return &ImplicitGrant{}
}

// GrantType returns "implicit". The implicit grant never appears at the
// token endpoint; the name keys the expiry table and audit records.
func (g *ImplicitGrant) GrantType() string {
	return "implicit"
}

// ResponseType returns "token".
func (g *ImplicitGrant) ResponseType() string {
	return "token"
}

// ErrorsInFragment returns true: errors for response_type=token go back
// in the fragment, like the token itself (RFC 6749 section 4.2.2.1).
func (g *ImplicitGrant) ErrorsInFragment() bool {
	return true
}

// ValidateAuthorizationRequest checks the authorization request and
// resolves the client and effective redirect URI.
func (g *ImplicitGrant) ValidateAuthorizationRequest(ctx context.Context, r *Request) (*storage.Client, string, error) {
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
		return client, redirectURI, ErrUnauthorizedClient("client is not authorized for response type token")
	}
	if _, err := g.server.validateScope(client, r.Scope()); err != nil {
		return client, redirectURI, err
	}

	return client, redirectURI, nil
}

// CreateAuthorizationResponse issues the access token directly in the
// redirect fragment. A nil grantUser denies the request.
func (g *ImplicitGrant) CreateAuthorizationResponse(ctx context.Context, r *Request, client *storage.Client, redirectURI string, grantUser *storage.User) (*Response, error) {
	state := r.State()

	if grantUser == nil {
		denied := url.Values{"error": {ErrorCodeAccessDenied}}
		if state != "" {
			denied.Set("state", state)
		}
		location, err := addFragmentParams(redirectURI, denied)
		if err != nil {
			return nil, ErrServerError("failed to build redirect")
		}
		return newRedirectResponse(location), nil
	}

	scope, err := g.server.validateScope(client, r.Scope())
	if err != nil {
		return nil, err
	}

	bearer, err := g.server.issueToken(ctx, client, g.GrantType(), grantUser, scope, false)
	if err != nil {
		return nil, err
	}

	fragment := url.Values{
		"access_token": {bearer.AccessToken},
		"token_type":   {bearer.TokenType},
		"expires_in":   {strconv.FormatInt(bearer.ExpiresIn, 10)},
	}
	if bearer.Scope != "" {
		fragment.Set("scope", bearer.Scope)
	}
	if state != "" {
		fragment.Set("state", state)
	}

	location, err := addFragmentParams(redirectURI, fragment)
	if err != nil {
		return nil, ErrServerError("failed to build redirect")
	}
	return newRedirectResponse(location), nil
}

// addFragmentParams returns base with params encoded into its fragment.
func addFragmentParams(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	return u.String() + "#" + params.Encode(), nil
}

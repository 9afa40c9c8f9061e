package oauth

import (
	"context"

	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// TokenGenerateFunc produces one token value for an issuance. It aliases
// the token package generator signature so hosts configuring the server
// do not need to import both packages.
type TokenGenerateFunc = token.GenerateFunc

// Grant is one OAuth 2.0 flow registered with the server. Grants are
// stateless: a single instance serves concurrent requests.
type Grant interface {
	// GrantType returns the grant_type value this grant serves, or ""
	// for authorization-endpoint-only grants.
	GrantType() string
}

// TokenGrant handles token endpoint requests. Token validates the
// request against an authenticated client, performs the exchange, and
// returns the issued bearer token.
type TokenGrant interface {
	Grant

	// Token validates the request and issues a bearer token. client has
	// already been authenticated by the server.
	Token(ctx context.Context, r *Request, client *storage.Client) (*token.Bearer, error)
}

// AuthorizationGrant handles authorization endpoint requests.
type AuthorizationGrant interface {
	Grant

	// ResponseType returns the response_type value this grant serves.
	ResponseType() string

	// ErrorsInFragment reports whether authorization errors travel back
	// to the client in the redirect fragment instead of the query
	// string, per the error rules of the grant's response type.
	ErrorsInFragment() bool

	// ValidateAuthorizationRequest checks the request and resolves the
	// client and effective redirect URI before user interaction.
	ValidateAuthorizationRequest(ctx context.Context, r *Request) (*storage.Client, string, error)

	// CreateAuthorizationResponse completes the flow after the resource
	// owner decided. A nil grantUser means the request was denied.
	CreateAuthorizationResponse(ctx context.Context, r *Request, client *storage.Client, redirectURI string, grantUser *storage.User) (*Response, error)
}

// serverBound is implemented by grants that need a reference to the
// server they are registered with. RegisterGrant wires it.
type serverBound interface {
	bindServer(s *AuthorizationServer)
}

// baseGrant carries the server reference shared by the built-in grants.
type baseGrant struct {
	server *AuthorizationServer
}

func (g *baseGrant) bindServer(s *AuthorizationServer) {
	g.server = s
}

// checkGrantType verifies the client is allowed to use grantType.
func (g *baseGrant) checkGrantType(client *storage.Client, grantType string) error {
	if !client.AllowsGrantType(grantType) {
		return ErrUnauthorizedClient("client is not authorized for grant type " + grantType)
	}
	return nil
}

package oauth

import (
	"context"

	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// ClientCredentialsGrant implements the client credentials grant
// (RFC 6749 section 4.4). Only confidential clients may use it, and no
// refresh token is issued.
type ClientCredentialsGrant struct {
	baseGrant
}

// NewClientCredentialsGrant creates a client credentials grant.
func NewClientCredentialsGrant() *ClientCredentialsGrant {
	return &ClientCredentialsGrant{}
}

// GrantType returns "client_credentials".
func (g *ClientCredentialsGrant) GrantType() string {
	return "client_credentials"
}

// Token issues a bearer token against the client's own authorization.
func (g *ClientCredentialsGrant) Token(ctx context.Context, r *Request, client *storage.Client) (*token.Bearer, error) {
	if !client.IsConfidential() {
		return nil, ErrUnauthorizedClient("public clients may not use the client_credentials grant")
	}
	if err := g.checkGrantType(client, g.GrantType()); err != nil {
		return nil, err
	}

	scope, err := g.server.validateScope(client, r.Scope())
	if err != nil {
		return nil, err
	}

	return g.server.issueToken(ctx, client, g.GrantType(), nil, scope, false)
}

package oauth

import (
	"context"

	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// PasswordGrant implements the resource owner password credentials grant
// (RFC 6749 section 4.3). Resource owner credentials are validated by
// the host-supplied storage.UserAuthenticator.
type PasswordGrant struct {
	baseGrant

	users storage.UserAuthenticator
}

// NewPasswordGrant creates a password grant backed by users.
func NewPasswordGrant(users storage.UserAuthenticator) *PasswordGrant {
	return &PasswordGrant{users: users}
}

// GrantType returns "password".
func (g *PasswordGrant) GrantType() string {
	return "password"
}

// Token validates the resource owner credentials and issues a bearer
// token on their behalf.
func (g *PasswordGrant) Token(ctx context.Context, r *Request, client *storage.Client) (*token.Bearer, error) {
	if err := g.checkGrantType(client, g.GrantType()); err != nil {
		return nil, err
	}

	username := r.Username()
	password := r.Password()
	if username == "" || password == "" {
		return nil, ErrInvalidRequest("username and password are required")
	}

	user, err := g.users.Authenticate(ctx, username, password)
	if err != nil {
		g.server.auditAuthFailure(ctx, client.ClientID, "invalid resource owner credentials", r.RemoteAddr)
		return nil, ErrInvalidGrant("invalid username or password")
	}

	scope, err := g.server.validateScope(client, r.Scope())
	if err != nil {
		return nil, err
	}

	return g.server.issueToken(ctx, client, g.GrantType(), user, scope, true)
}

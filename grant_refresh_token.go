package oauth

import (
	"context"
	"strings"

	"github.com/giantswarm/oauth-server/security"
	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// RefreshTokenGrant implements the refresh token grant (RFC 6749
// section 6). Refresh tokens rotate: each exchange revokes the presented
// token and issues a fresh pair, so a replayed refresh token is both
// detectable and dead.
type RefreshTokenGrant struct {
	baseGrant
}

// NewRefreshTokenGrant creates a refresh token grant.
func NewRefreshTokenGrant() *RefreshTokenGrant {
	return &RefreshTokenGrant{}
}

// GrantType returns "refresh_token".
func (g *RefreshTokenGrant) GrantType() string {
	return "refresh_token"
}

// Token exchanges a refresh token for a new bearer token.
func (g *RefreshTokenGrant) Token(ctx context.Context, r *Request, client *storage.Client) (*token.Bearer, error) {
	if err := g.checkGrantType(client, g.GrantType()); err != nil {
		return nil, err
	}

	refreshToken := r.RefreshToken()
	if refreshToken == "" {
		return nil, ErrInvalidRequest("refresh_token is required")
	}

	record, err := g.server.tokens.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidGrant("invalid refresh token")
	}
	if record.ClientID != client.ClientID {
		return nil, ErrInvalidGrant("invalid refresh token")
	}
	if record.Revoked {
		// A revoked refresh token coming back is a replay signal.
		g.server.auditor.LogEvent(security.Event{
			Type:     security.EventRefreshTokenReuseDetected,
			ClientID: client.ClientID,
		})
		return nil, ErrInvalidGrant("invalid refresh token")
	}
	if security.IsExpired(record.ExpiresAt()) {
		return nil, ErrInvalidGrant("refresh token has expired")
	}

	scope, err := narrowScope(record.Scope, r.Scope())
	if err != nil {
		return nil, err
	}

	var user *storage.User
	if record.UserID != "" {
		user = &storage.User{ID: record.UserID}
	}

	bearer, err := g.server.issueToken(ctx, client, g.GrantType(), user, scope, true)
	if err != nil {
		return nil, err
	}

	if err := g.server.tokens.RevokeToken(ctx, record); err != nil {
		return nil, ErrServerError("failed to rotate refresh token")
	}

	return bearer, nil
}

// narrowScope validates a requested scope against the originally granted
// one. The request may shrink the scope but never widen it; an empty
// request keeps the original.
func narrowScope(granted, requested string) (string, error) {
	if requested == "" {
		return granted, nil
	}
	grantedSet := map[string]bool{}
	for _, s := range strings.Fields(granted) {
		grantedSet[s] = true
	}
	for _, s := range strings.Fields(requested) {
		if !grantedSet[s] {
			return "", ErrInvalidScope("requested scope exceeds the originally granted scope")
		}
	}
	return requested, nil
}

package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/giantswarm/oauth-server/instrumentation"
	"github.com/giantswarm/oauth-server/security"
	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/token"
)

// ClientAuthenticatedHook observes successful client authentications.
// Hooks run synchronously on the request path; keep them fast.
type ClientAuthenticatedHook func(ctx context.Context, client *storage.Client, grantType string)

// TokenRevokedHook observes token revocations.
type TokenRevokedHook func(ctx context.Context, revoked *storage.Token)

// AuthorizationServer drives the bearer token lifecycle: grant
// selection, client authentication, token issuance, and revocation.
// It is transport-agnostic; hosts adapt their framework requests into
// Request values and render the returned Response.
type AuthorizationServer struct {
	clients storage.ClientStore
	tokens  storage.TokenStore
	flows   storage.FlowStore

	generator *token.Generator
	codeTTL   time.Duration
	errorURIs map[string]string

	tokenGrants map[string]TokenGrant
	authGrants  map[string]AuthorizationGrant

	onClientAuthenticated []ClientAuthenticatedHook
	onTokenRevoked        []TokenRevokedHook

	auditor     *security.Auditor
	rateLimiter *security.RateLimiter
	metrics     *instrumentation.Metrics
	logger      *slog.Logger
}

// NewServer creates an authorization server. clients and tokens are
// required; flows may be nil when no authorization code grant will be
// registered. Configuration problems fail construction rather than
// surfacing per request.
func NewServer(cfg Config, clients storage.ClientStore, tokens storage.TokenStore, flows storage.FlowStore) (*AuthorizationServer, error) {
	if clients == nil {
		return nil, errors.New("oauth: client store is required")
	}
	if tokens == nil {
		return nil, errors.New("oauth: token store is required")
	}
	cfg.applyDefaults()

	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	s := &AuthorizationServer{
		clients:     clients,
		tokens:      tokens,
		flows:       flows,
		generator:   generator,
		codeTTL:     cfg.AuthorizationCodeTTL,
		errorURIs:   cfg.ErrorURIs,
		tokenGrants: make(map[string]TokenGrant),
		authGrants:  make(map[string]AuthorizationGrant),
		auditor:     security.NewAuditor(cfg.Logger, cfg.EnableAuditLogging),
		logger:      cfg.Logger,
	}

	if cfg.RateLimit.Rate > 0 {
		s.rateLimiter = security.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst, cfg.Logger)
	}

	return s, nil
}

// buildGenerator assembles the token generator from configuration.
func buildGenerator(cfg Config) (*token.Generator, error) {
	accessGen := cfg.AccessTokenGenerator
	if accessGen == nil && cfg.JWT.Enabled {
		jwtCfg := token.JWTConfig{
			Issuer:    cfg.JWT.Issuer,
			Key:       cfg.JWT.Key,
			Algorithm: cfg.JWT.Algorithm,
			ExpiresIn: token.NewExpiresResolver(cfg.GrantExpiry),
		}
		if jwtCfg.Key == nil && cfg.JWT.KeyPath != "" {
			raw, err := os.ReadFile(cfg.JWT.KeyPath)
			if err != nil {
				return nil, fmt.Errorf("oauth: failed to read JWT signing key: %w", err)
			}
			jwtCfg.Key = raw
		}
		var err error
		accessGen, err = token.NewJWTGenerator(jwtCfg)
		if err != nil {
			return nil, fmt.Errorf("oauth: %w", err)
		}
	}

	opts := []token.Option{
		token.WithExpiresResolver(token.NewExpiresResolver(cfg.GrantExpiry)),
	}
	if accessGen != nil {
		opts = append(opts, token.WithAccessTokenGenerator(accessGen))
	}
	if cfg.RefreshTokenGenerator != nil {
		opts = append(opts, token.WithRefreshTokenGenerator(cfg.RefreshTokenGenerator))
	} else if cfg.EnableRefreshToken {
		opts = append(opts, token.WithRefreshTokenGenerator(token.RandomGenerator(token.DefaultRefreshTokenEntropy)))
	}

	return token.NewGenerator(opts...), nil
}

// RegisterGrant registers a grant with the server. Token grants are
// keyed by grant_type, authorization grants by response_type; a grant
// implementing both (authorization code) is registered under both.
func (s *AuthorizationServer) RegisterGrant(g Grant) {
	if bound, ok := g.(serverBound); ok {
		bound.bindServer(s)
	}
	if tg, ok := g.(TokenGrant); ok && tg.GrantType() != "" {
		s.tokenGrants[tg.GrantType()] = tg
	}
	if ag, ok := g.(AuthorizationGrant); ok {
		s.authGrants[ag.ResponseType()] = ag
	}
}

// OnClientAuthenticated registers a hook invoked after every successful
// client authentication.
func (s *AuthorizationServer) OnClientAuthenticated(hook ClientAuthenticatedHook) {
	s.onClientAuthenticated = append(s.onClientAuthenticated, hook)
}

// OnTokenRevoked registers a hook invoked after every revocation.
func (s *AuthorizationServer) OnTokenRevoked(hook TokenRevokedHook) {
	s.onTokenRevoked = append(s.onTokenRevoked, hook)
}

// SetInstrumentation attaches OpenTelemetry metrics recording.
func (s *AuthorizationServer) SetInstrumentation(inst *instrumentation.Instrumentation) {
	if inst != nil {
		s.metrics = inst.Metrics()
	}
}

// Close releases background resources.
func (s *AuthorizationServer) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// CreateTokenResponse serves one token endpoint request: pick the grant,
// authenticate the client, delegate issuance, and render the response.
// All failures render as RFC 6749 error bodies.
func (s *AuthorizationServer) CreateTokenResponse(ctx context.Context, r *Request) *Response {
	if resp := s.checkRateLimit(r); resp != nil {
		return resp
	}

	grantType := r.GrantType()
	if grantType == "" {
		return s.errorResponse(ErrInvalidRequest("grant_type is required"))
	}
	grant, ok := s.tokenGrants[grantType]
	if !ok {
		return s.errorResponse(ErrUnsupportedGrantType("unsupported grant type: " + grantType))
	}

	client, err := s.authenticateClient(ctx, r, grantType)
	if err != nil {
		return s.errorResponse(err)
	}

	bearer, err := grant.Token(ctx, r, client)
	if err != nil {
		return s.errorResponse(err)
	}

	return newJSONResponse(http.StatusOK, bearer)
}

// CreateAuthorizationResponse serves one authorization endpoint request.
// The host authenticates the resource owner and passes the result as
// grantUser; nil means the request was denied. Errors detected before a
// trustworthy redirect URI is established are returned as direct error
// bodies; later errors redirect back to the client per RFC 6749.
func (s *AuthorizationServer) CreateAuthorizationResponse(ctx context.Context, r *Request, grantUser *storage.User) *Response {
	responseType := r.ResponseType()
	if responseType == "" {
		return s.errorResponse(ErrInvalidRequest("response_type is required"))
	}
	grant, ok := s.authGrants[responseType]
	if !ok {
		return s.errorResponse(ErrUnsupportedResponseType("unsupported response type: " + responseType))
	}

	client, redirectURI, err := grant.ValidateAuthorizationRequest(ctx, r)
	if err != nil {
		if redirectURI == "" {
			return s.errorResponse(err)
		}
		return s.errorRedirect(grant, redirectURI, err, r.State())
	}

	resp, err := grant.CreateAuthorizationResponse(ctx, r, client, redirectURI, grantUser)
	if err != nil {
		return s.errorRedirect(grant, redirectURI, err, r.State())
	}
	return resp
}

// CreateRevocationResponse serves one RFC 7009 revocation request.
// Revocation is idempotent: unknown tokens, foreign tokens, and repeat
// revocations all yield the same empty 200 so callers learn nothing
// about token existence.
func (s *AuthorizationServer) CreateRevocationResponse(ctx context.Context, r *Request) *Response {
	if resp := s.checkRateLimit(r); resp != nil {
		return resp
	}

	client, err := s.authenticateClient(ctx, r, "revocation")
	if err != nil {
		return s.errorResponse(err)
	}

	value := r.Token()
	if value == "" {
		return s.errorResponse(ErrInvalidRequest("token is required"))
	}

	record := s.findToken(ctx, value, r.TokenTypeHint())
	if record == nil || record.ClientID != client.ClientID {
		return emptyRevocationResponse()
	}

	if !record.Revoked {
		if err := s.tokens.RevokeToken(ctx, record); err != nil {
			return s.errorResponse(ErrServerError("failed to revoke token"))
		}
		for _, hook := range s.onTokenRevoked {
			hook(ctx, record)
		}
		s.auditor.LogTokenRevoked(record.UserID, client.ClientID, r.TokenTypeHint())
		s.metrics.RecordTokenRevoked(ctx, r.TokenTypeHint())
	}

	return emptyRevocationResponse()
}

// findToken resolves a token record by value, honoring the caller's
// token_type_hint but falling back to the other index per RFC 7009.
func (s *AuthorizationServer) findToken(ctx context.Context, value, hint string) *storage.Token {
	lookups := []func(context.Context, string) (*storage.Token, error){
		s.tokens.GetByAccessToken,
		s.tokens.GetByRefreshToken,
	}
	if hint == "refresh_token" {
		lookups[0], lookups[1] = lookups[1], lookups[0]
	}
	for _, lookup := range lookups {
		record, err := lookup(ctx, value)
		if err == nil {
			return record
		}
		// Not-found is the expected miss; anything else is a backend
		// problem hiding behind the uniform revocation response.
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("token lookup failed", "error", err)
		}
	}
	return nil
}

func emptyRevocationResponse() *Response {
	header := http.Header{}
	header.Set("Cache-Control", "no-store")
	header.Set("Pragma", "no-cache")
	return &Response{Status: http.StatusOK, Header: header}
}

// authenticateClient resolves and authenticates the requesting client.
// Confidential clients must present valid credentials; public clients
// only identify themselves.
func (s *AuthorizationServer) authenticateClient(ctx context.Context, r *Request, grantType string) (*storage.Client, error) {
	clientID := r.ClientID()
	if clientID == "" {
		s.auditAuthFailure(ctx, "", "missing client credentials", r.RemoteAddr)
		return nil, ErrInvalidClient("client authentication required")
	}

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		s.auditAuthFailure(ctx, clientID, "unknown client", r.RemoteAddr)
		return nil, ErrInvalidClient("client authentication failed")
	}

	if client.IsConfidential() {
		secret := r.ClientSecret()
		if secret == "" {
			s.auditAuthFailure(ctx, clientID, "missing client secret", r.RemoteAddr)
			return nil, ErrInvalidClient("client authentication failed")
		}
		if err := s.clients.ValidateClientSecret(ctx, clientID, secret); err != nil {
			s.auditAuthFailure(ctx, clientID, "invalid client secret", r.RemoteAddr)
			return nil, ErrInvalidClient("client authentication failed")
		}
	}

	s.auditor.LogClientAuthenticated(clientID, grantType, r.RemoteAddr)
	for _, hook := range s.onClientAuthenticated {
		hook(ctx, client, grantType)
	}

	return client, nil
}

// issueToken generates a bearer token, persists its record, and emits
// audit and metric events. Grants call this after their own validation.
func (s *AuthorizationServer) issueToken(ctx context.Context, client *storage.Client, grantType string, user *storage.User, scope string, includeRefresh bool) (*token.Bearer, error) {
	start := time.Now()

	bearer, err := s.generator.Issue(client, grantType, user, scope, includeRefresh)
	if err != nil {
		s.logger.Error("token generation failed", "grant_type", grantType, "error", err)
		return nil, ErrServerError("token generation failed")
	}

	userID := ""
	if user != nil {
		userID = user.ID
	}
	record := &storage.Token{
		AccessToken:  bearer.AccessToken,
		RefreshToken: bearer.RefreshToken,
		TokenType:    bearer.TokenType,
		ClientID:     client.ClientID,
		UserID:       userID,
		Scope:        bearer.Scope,
		GrantType:    grantType,
		ExpiresIn:    bearer.ExpiresIn,
		IssuedAt:     start,
	}
	if err := s.tokens.SaveToken(ctx, record); err != nil {
		s.logger.Error("token persistence failed", "grant_type", grantType, "error", err)
		return nil, ErrServerError("failed to save token")
	}

	s.auditor.LogTokenIssued(userID, client.ClientID, grantType, bearer.Scope)
	s.metrics.RecordTokenIssued(ctx, grantType, float64(time.Since(start))/float64(time.Millisecond))

	return bearer, nil
}

// validateScope checks requested scopes against the client's registered
// scopes. Clients with no registered scopes accept any request.
func (s *AuthorizationServer) validateScope(client *storage.Client, requested string) (string, error) {
	if requested == "" || len(client.Scopes) == 0 {
		return requested, nil
	}
	allowed := make(map[string]bool, len(client.Scopes))
	for _, sc := range client.Scopes {
		allowed[sc] = true
	}
	for _, sc := range strings.Fields(requested) {
		if !allowed[sc] {
			return "", ErrInvalidScope("scope " + sc + " is not allowed for this client")
		}
	}
	return requested, nil
}

// checkRateLimit applies per-caller rate limiting, keyed by client_id
// when present and remote address otherwise. Returns a non-nil response
// when the request must be rejected.
func (s *AuthorizationServer) checkRateLimit(r *Request) *Response {
	if s.rateLimiter == nil {
		return nil
	}
	identifier := r.ClientID()
	if identifier == "" {
		identifier = r.RemoteAddr
	}
	if s.rateLimiter.Allow(identifier) {
		return nil
	}
	s.auditor.LogRateLimitExceeded(r.RemoteAddr, r.ClientID())
	return s.errorResponse(ErrRateLimitExceeded("too many requests"))
}

// auditAuthFailure records a client authentication failure in the audit
// log and metrics.
func (s *AuthorizationServer) auditAuthFailure(ctx context.Context, clientID, reason, remoteAddr string) {
	s.auditor.LogAuthFailure("", clientID, remoteAddr, reason)
	s.metrics.RecordAuthFailure(ctx, reason)
}

// errorResponse renders err as an RFC 6749 error body, attaching any
// configured error_uri for its code.
func (s *AuthorizationServer) errorResponse(err error) *Response {
	oauthErr := asOAuthError(err)
	body := ErrorResponse{
		Error:            oauthErr.Code,
		ErrorDescription: oauthErr.Description,
		ErrorURI:         s.errorURIs[oauthErr.Code],
	}
	return newJSONResponse(oauthErr.Status, body)
}

// errorRedirect sends err back to the client's redirect URI, in the
// query string or the fragment depending on the grant's response type.
func (s *AuthorizationServer) errorRedirect(grant AuthorizationGrant, redirectURI string, err error, state string) *Response {
	oauthErr := asOAuthError(err)
	params := map[string]string{
		"error":             oauthErr.Code,
		"error_description": oauthErr.Description,
		"error_uri":         s.errorURIs[oauthErr.Code],
		"state":             state,
	}

	var location string
	var buildErr error
	if grant.ErrorsInFragment() {
		fragment := url.Values{}
		for key, value := range params {
			if value != "" {
				fragment.Set(key, value)
			}
		}
		location, buildErr = addFragmentParams(redirectURI, fragment)
	} else {
		location, buildErr = addQueryParams(redirectURI, params)
	}
	if buildErr != nil {
		return s.errorResponse(oauthErr)
	}
	return newRedirectResponse(location)
}

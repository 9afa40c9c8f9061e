package token

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/oauth-server/internal/encoding"
	"github.com/giantswarm/oauth-server/jose"
	"github.com/giantswarm/oauth-server/storage"
)

// JWTConfig configures a signed access token generator.
type JWTConfig struct {
	// Issuer is the value of the "iss" claim (required).
	Issuer string

	// Key is the raw signing key material for the chosen algorithm:
	// secret bytes for HS*, a PEM private key or parsed key for the
	// asymmetric families (required).
	Key any

	// Algorithm is the JOSE algorithm identifier, e.g. "RS256" (required).
	Algorithm string

	// ExpiresIn resolves the token lifetime; defaults to the built-in
	// grant expiry table.
	ExpiresIn ExpiresFunc
}

// jwtHeader is the fixed JOSE header of a signed access token.
type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// jwtClaims is the registered claim set carried by a signed access token.
type jwtClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud"`
	TokenID   string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Scope     string `json:"scope,omitempty"`
}

// NewJWTGenerator returns a GenerateFunc producing signed compact JWTs
// through the jose engine, for deployments that want structured access
// tokens instead of opaque random values. Missing issuer, key, or an
// unknown algorithm is a configuration error and fails construction.
func NewJWTGenerator(cfg JWTConfig) (GenerateFunc, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("token: JWT issuer is required")
	}
	if cfg.Key == nil {
		return nil, fmt.Errorf("token: JWT signing key is required")
	}
	alg, err := jose.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	// Fail on unusable key material at startup rather than per request.
	if _, err := alg.PrepareSignKey(cfg.Key); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	expiresIn := cfg.ExpiresIn
	if expiresIn == nil {
		expiresIn = NewExpiresResolver(nil)
	}

	return func(grantType string, client *storage.Client, user *storage.User, scope string) (string, error) {
		subject := client.ClientID
		if user != nil {
			subject = user.ID
		}
		now := time.Now()
		claims := jwtClaims{
			Issuer:    cfg.Issuer,
			Subject:   subject,
			Audience:  client.ClientID,
			TokenID:   uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(expiresIn(client, grantType)) * time.Second).Unix(),
			Scope:     scope,
		}
		return signCompact(alg, cfg.Key, claims)
	}, nil
}

// signCompact serializes header and claims into the three-segment compact
// form, signing the first two segments with alg.
func signCompact(alg jose.Algorithm, rawKey any, claims jwtClaims) (string, error) {
	headerJSON, err := json.Marshal(jwtHeader{Alg: alg.Name(), Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("token: failed to encode JWT header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("token: failed to encode JWT claims: %w", err)
	}

	signingInput := encoding.EncodeBase64URL(headerJSON) + "." + encoding.EncodeBase64URL(claimsJSON)

	key, err := alg.PrepareSignKey(rawKey)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	sig, err := alg.Sign([]byte(signingInput), key)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	return signingInput + "." + encoding.EncodeBase64URL(sig), nil
}

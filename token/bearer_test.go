package token

import (
	"strings"
	"testing"

	"github.com/giantswarm/oauth-server/storage"
)

func testClient() *storage.Client {
	return &storage.Client{ClientID: "client-1", ClientType: "confidential"}
}

func TestIssueDefaults(t *testing.T) {
	g := NewGenerator()

	bearer, err := g.Issue(testClient(), "client_credentials", nil, "read", true)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if bearer.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", bearer.TokenType)
	}
	if bearer.Scope != "read" {
		t.Errorf("Scope = %q, want read", bearer.Scope)
	}
	// 42 bytes of entropy encode to 56 base64url characters.
	if len(bearer.AccessToken) != 56 {
		t.Errorf("len(AccessToken) = %d, want 56", len(bearer.AccessToken))
	}
	// No refresh generator configured, so none even when requested.
	if bearer.RefreshToken != "" {
		t.Errorf("RefreshToken = %q, want empty", bearer.RefreshToken)
	}
}

func TestIssueRefreshToken(t *testing.T) {
	g := NewGenerator(WithRefreshTokenGenerator(RandomGenerator(DefaultRefreshTokenEntropy)))

	t.Run("included when requested", func(t *testing.T) {
		bearer, err := g.Issue(testClient(), "password", &storage.User{ID: "u1"}, "", true)
		if err != nil {
			t.Fatal(err)
		}
		// 48 bytes of entropy encode to 64 base64url characters.
		if len(bearer.RefreshToken) != 64 {
			t.Errorf("len(RefreshToken) = %d, want 64", len(bearer.RefreshToken))
		}
	})

	t.Run("omitted when not requested", func(t *testing.T) {
		bearer, err := g.Issue(testClient(), "client_credentials", nil, "", false)
		if err != nil {
			t.Fatal(err)
		}
		if bearer.RefreshToken != "" {
			t.Errorf("RefreshToken = %q, want empty", bearer.RefreshToken)
		}
	})
}

func TestExpiresResolverDefaults(t *testing.T) {
	resolve := NewExpiresResolver(nil)

	tests := []struct {
		grantType string
		want      int64
	}{
		{"authorization_code", 864000},
		{"implicit", 3600},
		{"password", 864000},
		{"client_credential", 864000},
		{"client_credentials", 864000}, // RFC name maps to the table entry
		{"refresh_token", DefaultExpiresIn},
		{"urn:ietf:params:oauth:grant-type:device_code", DefaultExpiresIn},
	}

	for _, tt := range tests {
		t.Run(tt.grantType, func(t *testing.T) {
			if got := resolve(testClient(), tt.grantType); got != tt.want {
				t.Errorf("resolve(%q) = %d, want %d", tt.grantType, got, tt.want)
			}
		})
	}
}

func TestExpiresResolverOverrides(t *testing.T) {
	resolve := NewExpiresResolver(map[string]int64{
		"implicit": 600,
		"password": 7200,
	})

	if got := resolve(testClient(), "implicit"); got != 600 {
		t.Errorf("implicit = %d, want 600", got)
	}
	if got := resolve(testClient(), "password"); got != 7200 {
		t.Errorf("password = %d, want 7200", got)
	}
	// Untouched entries keep their defaults.
	if got := resolve(testClient(), "authorization_code"); got != 864000 {
		t.Errorf("authorization_code = %d, want 864000", got)
	}
}

func TestRandomGeneratorUniqueness(t *testing.T) {
	gen := RandomGenerator(DefaultAccessTokenEntropy)

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		value, err := gen("password", nil, nil, "")
		if err != nil {
			t.Fatalf("generator error = %v", err)
		}
		if seen[value] {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[value] = true
	}
}

func TestRandomGeneratorURLSafe(t *testing.T) {
	gen := RandomGenerator(DefaultRefreshTokenEntropy)
	for i := 0; i < 50; i++ {
		value, err := gen("", nil, nil, "")
		if err != nil {
			t.Fatal(err)
		}
		if strings.ContainsAny(value, "+/=") {
			t.Fatalf("token %q contains non-URL-safe characters", value)
		}
	}
}

func TestCustomGenerators(t *testing.T) {
	g := NewGenerator(
		WithAccessTokenGenerator(func(grantType string, client *storage.Client, user *storage.User, scope string) (string, error) {
			return "access-" + grantType, nil
		}),
		WithRefreshTokenGenerator(func(grantType string, client *storage.Client, user *storage.User, scope string) (string, error) {
			return "refresh-" + grantType, nil
		}),
		WithExpiresResolver(func(*storage.Client, string) int64 { return 42 }),
	)

	bearer, err := g.Issue(testClient(), "password", nil, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if bearer.AccessToken != "access-password" {
		t.Errorf("AccessToken = %q", bearer.AccessToken)
	}
	if bearer.RefreshToken != "refresh-password" {
		t.Errorf("RefreshToken = %q", bearer.RefreshToken)
	}
	if bearer.ExpiresIn != 42 {
		t.Errorf("ExpiresIn = %d, want 42", bearer.ExpiresIn)
	}
}

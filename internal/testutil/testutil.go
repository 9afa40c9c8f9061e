// Package testutil provides shared helpers for tests: deterministic key
// material, seeded stores, and request builders.
package testutil

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/url"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/giantswarm/oauth-server/storage"
	"github.com/giantswarm/oauth-server/storage/memory"
)

// TestClientSecret is the plaintext secret of clients built by NewClient.
const TestClientSecret = "test-secret"

// GenerateRSAKey generates an RSA private key for tests.
func GenerateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return key
}

// GenerateECDSAKey generates an ECDSA private key on the given curve.
func GenerateECDSAKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate ECDSA key: %v", err)
	}
	return key
}

// PEMEncodePrivateKey serializes a private key as PKCS#8 PEM.
func PEMEncodePrivateKey(t *testing.T, key any) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal private key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// PEMEncodePublicKey serializes a public key as PKIX PEM.
func PEMEncodePublicKey(t *testing.T, key any) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// NewClient builds a confidential client with TestClientSecret hashed
// into place. Grant and response types default to allow-all.
func NewClient(t *testing.T, clientID string) *storage.Client {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestClientSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash client secret: %v", err)
	}
	return &storage.Client{
		ClientID:         clientID,
		ClientSecretHash: string(hash),
		ClientType:       "confidential",
		RedirectURIs:     []string{"https://client.example.com/callback"},
		ClientName:       "Test Client",
		CreatedAt:        time.Now(),
	}
}

// NewPublicClient builds a public client without a secret.
func NewPublicClient(t *testing.T, clientID string) *storage.Client {
	t.Helper()
	return &storage.Client{
		ClientID:     clientID,
		ClientType:   "public",
		RedirectURIs: []string{"https://client.example.com/callback"},
		ClientName:   "Test Public Client",
		CreatedAt:    time.Now(),
	}
}

// NewStore creates an in-memory store seeded with the given clients and
// stops it when the test finishes.
func NewStore(t *testing.T, clients ...*storage.Client) *memory.Store {
	t.Helper()
	store := memory.New()
	t.Cleanup(store.Stop)
	for _, client := range clients {
		if err := store.SaveClient(context.Background(), client); err != nil {
			t.Fatalf("failed to save client %s: %v", client.ClientID, err)
		}
	}
	return store
}

// FormValues builds url.Values from alternating key/value pairs.
func FormValues(t *testing.T, pairs ...string) url.Values {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatal("FormValues requires an even number of arguments")
	}
	values := url.Values{}
	for i := 0; i < len(pairs); i += 2 {
		values.Set(pairs[i], pairs[i+1])
	}
	return values
}

package jose

import (
	"crypto/elliptic"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/giantswarm/oauth-server/internal/testutil"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{
		"none",
		"HS256", "HS384", "HS512",
		"RS256", "RS384", "RS512",
		"ES256", "ES384", "ES512",
		"PS256", "PS384", "PS512",
	} {
		t.Run(name, func(t *testing.T) {
			alg, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", name, err)
			}
			if alg.Name() != name {
				t.Errorf("Name() = %q, want %q", alg.Name(), name)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("HS224")
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Lookup(HS224) error = %v, want ErrUnsupportedAlgorithm", err)
	}
}

func TestAlgorithmsSorted(t *testing.T) {
	names := Algorithms()
	if len(names) != 13 {
		t.Fatalf("Algorithms() returned %d names, want 13", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Algorithms() not sorted: %q before %q", names[i-1], names[i])
		}
	}
}

func TestHMACKnownVector(t *testing.T) {
	// HMAC-SHA256("secret", "hello") from the RFC 2104 construction.
	alg, err := Lookup("HS256")
	if err != nil {
		t.Fatal(err)
	}
	key, err := alg.PrepareSignKey("secret")
	if err != nil {
		t.Fatalf("PrepareSignKey() error = %v", err)
	}
	sig, err := alg.Sign([]byte("hello"), key)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	want := "88aab3ede8d3adf94d26ab90d3bafd4a2083070c3bcce9c014ee04a443847c0b"
	if got := hex.EncodeToString(sig); got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestHMACStringAndBytesKeysAgree(t *testing.T) {
	alg, _ := Lookup("HS512")
	fromString, err := alg.PrepareSignKey("secret")
	if err != nil {
		t.Fatal(err)
	}
	fromBytes, err := alg.PrepareSignKey([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("payload")
	sig1, _ := alg.Sign(msg, fromString)
	sig2, _ := alg.Sign(msg, fromBytes)
	if hex.EncodeToString(sig1) != hex.EncodeToString(sig2) {
		t.Error("string and []byte keys produced different signatures")
	}
}

func TestHMACRejectsNonByteKey(t *testing.T) {
	alg, _ := Lookup("HS256")
	if _, err := alg.PrepareSignKey(42); !errors.Is(err, ErrInvalidKeyMaterial) {
		t.Errorf("PrepareSignKey(int) error = %v, want ErrInvalidKeyMaterial", err)
	}
}

func TestNoneAlgorithm(t *testing.T) {
	alg, err := Lookup("none")
	if err != nil {
		t.Fatal(err)
	}

	key, err := alg.PrepareSignKey(nil)
	if err != nil {
		t.Fatalf("PrepareSignKey() error = %v", err)
	}
	sig, err := alg.Sign([]byte("anything"), key)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if len(sig) != 0 {
		t.Errorf("Sign() = %v, want empty signature", sig)
	}

	// Verification is a dead end: even the empty signature it produced
	// itself never verifies.
	vkey, _ := alg.PrepareVerifyKey(nil)
	if alg.Verify([]byte("anything"), vkey, sig) {
		t.Error("Verify() = true, want false for the none algorithm")
	}
	if alg.Verify([]byte("anything"), vkey, nil) {
		t.Error("Verify(nil sig) = true, want false")
	}
}

// signVerifyKeys returns prepared sign/verify keys for every family.
func signVerifyKeys(t *testing.T, name string) (any, any) {
	t.Helper()
	switch {
	case strings.HasPrefix(name, "HS"):
		return "shared-secret", "shared-secret"
	case strings.HasPrefix(name, "RS"), strings.HasPrefix(name, "PS"):
		key := testutil.GenerateRSAKey(t)
		return key, &key.PublicKey
	case strings.HasPrefix(name, "ES256"):
		key := testutil.GenerateECDSAKey(t, elliptic.P256())
		return key, &key.PublicKey
	case strings.HasPrefix(name, "ES384"):
		key := testutil.GenerateECDSAKey(t, elliptic.P384())
		return key, &key.PublicKey
	case strings.HasPrefix(name, "ES512"):
		key := testutil.GenerateECDSAKey(t, elliptic.P521())
		return key, &key.PublicKey
	default:
		t.Fatalf("no key material for %s", name)
		return nil, nil
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	msg := []byte("header.payload")

	for _, name := range Algorithms() {
		if name == "none" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			alg, err := Lookup(name)
			if err != nil {
				t.Fatal(err)
			}
			rawSign, rawVerify := signVerifyKeys(t, name)

			signKey, err := alg.PrepareSignKey(rawSign)
			if err != nil {
				t.Fatalf("PrepareSignKey() error = %v", err)
			}
			verifyKey, err := alg.PrepareVerifyKey(rawVerify)
			if err != nil {
				t.Fatalf("PrepareVerifyKey() error = %v", err)
			}

			sig, err := alg.Sign(msg, signKey)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if !alg.Verify(msg, verifyKey, sig) {
				t.Error("Verify() = false for a fresh signature")
			}

			// A single flipped bit must break verification.
			tampered := make([]byte, len(sig))
			copy(tampered, sig)
			tampered[0] ^= 0x01
			if alg.Verify(msg, verifyKey, tampered) {
				t.Error("Verify() = true for a tampered signature")
			}

			// So must a different message.
			if alg.Verify([]byte("header.other"), verifyKey, sig) {
				t.Error("Verify() = true for a different message")
			}

			// Truncated and empty signatures are rejected without error.
			if alg.Verify(msg, verifyKey, sig[:len(sig)-1]) {
				t.Error("Verify() = true for a truncated signature")
			}
			if alg.Verify(msg, verifyKey, nil) {
				t.Error("Verify() = true for a nil signature")
			}
		})
	}
}

func TestVerifyWrongKeyType(t *testing.T) {
	alg, _ := Lookup("RS256")
	// Verify never errors; a wrong key handle just fails.
	if alg.Verify([]byte("msg"), "not a key", []byte("sig")) {
		t.Error("Verify() = true with a bogus key handle")
	}
}

package jose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"errors"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/giantswarm/oauth-server/internal/testutil"
)

func TestPrepareSignKeyFromPEM(t *testing.T) {
	t.Run("RSA PKCS8", func(t *testing.T) {
		key := testutil.GenerateRSAKey(t)
		pemBytes := testutil.PEMEncodePrivateKey(t, key)

		alg, _ := Lookup("RS256")
		prepared, err := alg.PrepareSignKey(pemBytes)
		if err != nil {
			t.Fatalf("PrepareSignKey() error = %v", err)
		}
		if _, ok := prepared.(*rsa.PrivateKey); !ok {
			t.Errorf("prepared key is %T, want *rsa.PrivateKey", prepared)
		}
	})

	t.Run("EC PKCS8 as string", func(t *testing.T) {
		key := testutil.GenerateECDSAKey(t, elliptic.P256())
		pemBytes := testutil.PEMEncodePrivateKey(t, key)

		alg, _ := Lookup("ES256")
		prepared, err := alg.PrepareSignKey(string(pemBytes))
		if err != nil {
			t.Fatalf("PrepareSignKey() error = %v", err)
		}
		if _, ok := prepared.(*ecdsa.PrivateKey); !ok {
			t.Errorf("prepared key is %T, want *ecdsa.PrivateKey", prepared)
		}
	})

	t.Run("not PEM", func(t *testing.T) {
		alg, _ := Lookup("RS256")
		if _, err := alg.PrepareSignKey([]byte("not a key")); !errors.Is(err, ErrInvalidKeyMaterial) {
			t.Errorf("PrepareSignKey() error = %v, want ErrInvalidKeyMaterial", err)
		}
	})

	t.Run("wrong family", func(t *testing.T) {
		key := testutil.GenerateECDSAKey(t, elliptic.P256())
		pemBytes := testutil.PEMEncodePrivateKey(t, key)

		alg, _ := Lookup("RS256")
		if _, err := alg.PrepareSignKey(pemBytes); !errors.Is(err, ErrInvalidKeyMaterial) {
			t.Errorf("PrepareSignKey(EC key for RS256) error = %v, want ErrInvalidKeyMaterial", err)
		}
	})
}

func TestPrepareVerifyKeyFromPEM(t *testing.T) {
	key := testutil.GenerateRSAKey(t)
	pemBytes := testutil.PEMEncodePublicKey(t, &key.PublicKey)

	alg, _ := Lookup("RS256")
	prepared, err := alg.PrepareVerifyKey(pemBytes)
	if err != nil {
		t.Fatalf("PrepareVerifyKey() error = %v", err)
	}
	pub, ok := prepared.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("prepared key is %T, want *rsa.PublicKey", prepared)
	}
	if pub.N.Cmp(key.N) != 0 {
		t.Error("parsed modulus does not match original key")
	}
}

func TestPrepareVerifyKeyFromSSH(t *testing.T) {
	t.Run("ssh-rsa", func(t *testing.T) {
		key := testutil.GenerateRSAKey(t)
		sshPub, err := ssh.NewPublicKey(&key.PublicKey)
		if err != nil {
			t.Fatal(err)
		}
		line := ssh.MarshalAuthorizedKey(sshPub)

		alg, _ := Lookup("RS256")
		prepared, err := alg.PrepareVerifyKey(line)
		if err != nil {
			t.Fatalf("PrepareVerifyKey() error = %v", err)
		}
		pub, ok := prepared.(*rsa.PublicKey)
		if !ok {
			t.Fatalf("prepared key is %T, want *rsa.PublicKey", prepared)
		}
		if pub.N.Cmp(key.N) != 0 {
			t.Error("parsed modulus does not match original key")
		}
	})

	t.Run("ecdsa-sha2", func(t *testing.T) {
		key := testutil.GenerateECDSAKey(t, elliptic.P384())
		sshPub, err := ssh.NewPublicKey(&key.PublicKey)
		if err != nil {
			t.Fatal(err)
		}
		line := ssh.MarshalAuthorizedKey(sshPub)

		alg, _ := Lookup("ES384")
		prepared, err := alg.PrepareVerifyKey(string(line))
		if err != nil {
			t.Fatalf("PrepareVerifyKey() error = %v", err)
		}
		pub, ok := prepared.(*ecdsa.PublicKey)
		if !ok {
			t.Fatalf("prepared key is %T, want *ecdsa.PublicKey", prepared)
		}
		if pub.X.Cmp(key.X) != 0 || pub.Y.Cmp(key.Y) != 0 {
			t.Error("parsed point does not match original key")
		}
	})

	t.Run("mangled ssh line", func(t *testing.T) {
		alg, _ := Lookup("RS256")
		if _, err := alg.PrepareVerifyKey([]byte("ssh-rsa AAAAgarbage")); !errors.Is(err, ErrInvalidKeyMaterial) {
			t.Errorf("PrepareVerifyKey() error = %v, want ErrInvalidKeyMaterial", err)
		}
	})
}

func TestSignWithSSHVerifiedKey(t *testing.T) {
	// End to end: sign with the PEM private key, verify with the SSH
	// form of the same public key.
	key := testutil.GenerateECDSAKey(t, elliptic.P256())
	sshPub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	alg, _ := Lookup("ES256")
	signKey, err := alg.PrepareSignKey(testutil.PEMEncodePrivateKey(t, key))
	if err != nil {
		t.Fatal(err)
	}
	verifyKey, err := alg.PrepareVerifyKey(ssh.MarshalAuthorizedKey(sshPub))
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("cross-format message")
	sig, err := alg.Sign(msg, signKey)
	if err != nil {
		t.Fatal(err)
	}
	if !alg.Verify(msg, verifyKey, sig) {
		t.Error("Verify() = false across PEM/SSH key formats")
	}
}

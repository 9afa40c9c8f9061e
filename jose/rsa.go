package jose

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
)

// rsaAlgorithm implements the RS* family (RSASSA-PKCS#1 v1.5).
type rsaAlgorithm struct {
	name string
	hash crypto.Hash
}

func (a rsaAlgorithm) Name() string { return a.name }

func (a rsaAlgorithm) PrepareSignKey(raw any) (any, error) {
	return prepareRSAPrivateKey(raw)
}

func (a rsaAlgorithm) PrepareVerifyKey(raw any) (any, error) {
	return prepareRSAPublicKey(raw)
}

func (a rsaAlgorithm) Sign(msg []byte, key any) ([]byte, error) {
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an RSA private key, got %T", ErrInvalidKeyMaterial, a.name, key)
	}
	return rsa.SignPKCS1v15(rand.Reader, priv, a.hash, digest(a.hash, msg))
}

func (a rsaAlgorithm) Verify(msg []byte, key any, sig []byte) bool {
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return false
	}
	return rsa.VerifyPKCS1v15(pub, a.hash, digest(a.hash, msg), sig) == nil
}

// pssAlgorithm implements the PS* family (RSASSA-PSS). It shares key
// preparation with RS* but not the signing padding; the salt length is
// pinned to the digest size of the configured hash.
type pssAlgorithm struct {
	name string
	hash crypto.Hash
}

func (a pssAlgorithm) Name() string { return a.name }

func (a pssAlgorithm) PrepareSignKey(raw any) (any, error) {
	return prepareRSAPrivateKey(raw)
}

func (a pssAlgorithm) PrepareVerifyKey(raw any) (any, error) {
	return prepareRSAPublicKey(raw)
}

func (a pssAlgorithm) pssOptions() *rsa.PSSOptions {
	return &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: a.hash}
}

func (a pssAlgorithm) Sign(msg []byte, key any) ([]byte, error) {
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an RSA private key, got %T", ErrInvalidKeyMaterial, a.name, key)
	}
	return rsa.SignPSS(rand.Reader, priv, a.hash, digest(a.hash, msg), a.pssOptions())
}

func (a pssAlgorithm) Verify(msg []byte, key any, sig []byte) bool {
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return false
	}
	return rsa.VerifyPSS(pub, a.hash, digest(a.hash, msg), sig, a.pssOptions()) == nil
}

func prepareRSAPrivateKey(raw any) (any, error) {
	if key, ok := raw.(*rsa.PrivateKey); ok {
		return key, nil
	}
	data := rawKeyBytes(raw)
	if data == nil {
		return nil, fmt.Errorf("%w: expected RSA private key or PEM bytes, got %T", ErrInvalidKeyMaterial, raw)
	}
	parsed, err := parsePEMPrivateKey(data)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, not an RSA private key", ErrInvalidKeyMaterial, parsed)
	}
	return key, nil
}

func prepareRSAPublicKey(raw any) (any, error) {
	if key, ok := raw.(*rsa.PublicKey); ok {
		return key, nil
	}
	data := rawKeyBytes(raw)
	if data == nil {
		return nil, fmt.Errorf("%w: expected RSA public key, PEM, or SSH line, got %T", ErrInvalidKeyMaterial, raw)
	}
	parsed, err := parsePublicKeyMaterial(data)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, not an RSA public key", ErrInvalidKeyMaterial, parsed)
	}
	return key, nil
}

// digest hashes msg with h. All registered hashes are linked into the
// binary via their crypto/sha* imports.
func digest(h crypto.Hash, msg []byte) []byte {
	hasher := h.New()
	hasher.Write(msg)
	return hasher.Sum(nil)
}

package jose

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// sshKeyPrefixes are the authorized-key line prefixes recognized when
// preparing verification keys. Anything else is treated as PEM.
var sshKeyPrefixes = [][]byte{
	[]byte("ssh-rsa"),
	[]byte("ecdsa-sha2-"),
}

// rawKeyBytes converts string or []byte key material into bytes. A nil
// result with nil error means the input was not textual and should be
// treated as a pre-parsed key handle.
func rawKeyBytes(raw any) []byte {
	switch k := raw.(type) {
	case []byte:
		return k
	case string:
		return []byte(k)
	default:
		return nil
	}
}

// parsePEMPrivateKey parses an unencrypted PEM private key in PKCS#8,
// PKCS#1 (RSA), or SEC 1 (EC) form.
func parsePEMPrivateKey(data []byte) (any, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKeyMaterial)
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unparsable private key", ErrInvalidKeyMaterial)
}

// parsePEMPublicKey parses a PEM public key in PKIX or PKCS#1 form, or
// extracts the public key from a PEM certificate.
func parsePEMPublicKey(data []byte) (any, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKeyMaterial)
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	if cert, err := x509.ParseCertificate(block.Bytes); err == nil {
		return cert.PublicKey, nil
	}
	return nil, fmt.Errorf("%w: unparsable public key", ErrInvalidKeyMaterial)
}

// parseSSHPublicKey parses an SSH authorized-key line (e.g. "ssh-rsa
// AAAA... user@host") into the underlying crypto public key.
func parseSSHPublicKey(data []byte) (any, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	cryptoKey, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: SSH key type %s has no crypto form", ErrInvalidKeyMaterial, pub.Type())
	}
	return cryptoKey.CryptoPublicKey(), nil
}

// parsePublicKeyMaterial dispatches textual verification key material by
// sniffing the SSH prefix, falling back to PEM.
func parsePublicKeyMaterial(data []byte) (any, error) {
	for _, prefix := range sshKeyPrefixes {
		if bytes.HasPrefix(data, prefix) {
			return parseSSHPublicKey(data)
		}
	}
	return parsePEMPublicKey(data)
}

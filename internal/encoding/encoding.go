// Package encoding implements the base64url and big-integer codecs used
// wherever keys and tokens cross a process boundary (JWT segments, JWK
// fields). The canonical external form is base64url with padding stripped.
package encoding

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// EncodeBase64URL encodes b as base64url without padding.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes a base64url string. Input may carry or omit
// trailing '=' padding; decoding never depends on it being present.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// IntToBase64 encodes a non-negative integer as the base64url form of its
// minimal big-endian byte representation. Zero encodes to the empty string.
func IntToBase64(n *big.Int) (string, error) {
	if n.Sign() < 0 {
		return "", fmt.Errorf("encoding: integer must not be negative")
	}
	return EncodeBase64URL(n.Bytes()), nil
}

// Base64ToInt decodes a base64url string into a big-endian integer.
func Base64ToInt(s string) (*big.Int, error) {
	data, err := DecodeBase64URL(s)
	if err != nil {
		return nil, fmt.Errorf("encoding: invalid base64url integer: %w", err)
	}
	return new(big.Int).SetBytes(data), nil
}

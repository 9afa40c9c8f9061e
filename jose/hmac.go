package jose

import (
	"crypto"
	"crypto/hmac"
	"fmt"
)

// hmacAlgorithm implements the HS* family. Keys are raw secret bytes.
type hmacAlgorithm struct {
	name string
	hash crypto.Hash
}

func (a hmacAlgorithm) Name() string { return a.name }

func (a hmacAlgorithm) PrepareSignKey(raw any) (any, error) {
	return secretBytes(raw)
}

func (a hmacAlgorithm) PrepareVerifyKey(raw any) (any, error) {
	return secretBytes(raw)
}

func (a hmacAlgorithm) Sign(msg []byte, key any) ([]byte, error) {
	secret, ok := key.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: HMAC key must be secret bytes, got %T", ErrInvalidKeyMaterial, key)
	}
	mac := hmac.New(a.hash.New, secret)
	mac.Write(msg)
	return mac.Sum(nil), nil
}

func (a hmacAlgorithm) Verify(msg []byte, key any, sig []byte) bool {
	expected, err := a.Sign(msg, key)
	if err != nil {
		return false
	}
	// hmac.Equal compares in constant time.
	return hmac.Equal(sig, expected)
}

// secretBytes normalizes raw HMAC key input into a byte slice.
func secretBytes(raw any) ([]byte, error) {
	switch k := raw.(type) {
	case []byte:
		return k, nil
	case string:
		return []byte(k), nil
	default:
		return nil, fmt.Errorf("%w: HMAC key must be bytes or string, got %T", ErrInvalidKeyMaterial, raw)
	}
}

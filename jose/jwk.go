package jose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/giantswarm/oauth-server/internal/encoding"
)

// PublicKeyJWK exports an RSA or EC public key as a JSON Web Key field
// map. Big integers are encoded big-endian, base64url, padding stripped.
func PublicKeyJWK(pub any) (map[string]string, error) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		n, err := encoding.IntToBase64(key.N)
		if err != nil {
			return nil, err
		}
		e, err := encoding.IntToBase64(big.NewInt(int64(key.E)))
		if err != nil {
			return nil, err
		}
		return map[string]string{"kty": "RSA", "n": n, "e": e}, nil

	case *ecdsa.PublicKey:
		crv, err := curveName(key.Curve)
		if err != nil {
			return nil, err
		}
		size := coordinateSize(key.Curve)
		x := make([]byte, size)
		y := make([]byte, size)
		key.X.FillBytes(x)
		key.Y.FillBytes(y)
		return map[string]string{
			"kty": "EC",
			"crv": crv,
			"x":   encoding.EncodeBase64URL(x),
			"y":   encoding.EncodeBase64URL(y),
		}, nil

	default:
		return nil, fmt.Errorf("%w: cannot export %T as JWK", ErrInvalidKeyMaterial, pub)
	}
}

func curveName(curve elliptic.Curve) (string, error) {
	switch curve {
	case elliptic.P256():
		return "P-256", nil
	case elliptic.P384():
		return "P-384", nil
	case elliptic.P521():
		return "P-521", nil
	default:
		return "", fmt.Errorf("%w: unsupported curve %s", ErrInvalidKeyMaterial, curve.Params().Name)
	}
}

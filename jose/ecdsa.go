package jose

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/asn1"
	"fmt"
	"math/big"
)

// ecdsaAlgorithm implements the ES* family. JOSE EC signatures are the
// raw concatenation r||s of two big-endian integers, each zero-padded to
// the curve coordinate byte length, rather than the ASN.1 DER form the
// crypto primitives produce. The conversion happens at this boundary:
// DER→raw after signing, raw→DER before verification.
type ecdsaAlgorithm struct {
	name string
	hash crypto.Hash
}

func (a ecdsaAlgorithm) Name() string { return a.name }

func (a ecdsaAlgorithm) PrepareSignKey(raw any) (any, error) {
	if key, ok := raw.(*ecdsa.PrivateKey); ok {
		return key, nil
	}
	data := rawKeyBytes(raw)
	if data == nil {
		return nil, fmt.Errorf("%w: expected EC private key or PEM bytes, got %T", ErrInvalidKeyMaterial, raw)
	}
	parsed, err := parsePEMPrivateKey(data)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, not an EC private key", ErrInvalidKeyMaterial, parsed)
	}
	return key, nil
}

func (a ecdsaAlgorithm) PrepareVerifyKey(raw any) (any, error) {
	if key, ok := raw.(*ecdsa.PublicKey); ok {
		return key, nil
	}
	data := rawKeyBytes(raw)
	if data == nil {
		return nil, fmt.Errorf("%w: expected EC public key, PEM, or SSH line, got %T", ErrInvalidKeyMaterial, raw)
	}
	parsed, err := parsePublicKeyMaterial(data)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, not an EC public key", ErrInvalidKeyMaterial, parsed)
	}
	return key, nil
}

func (a ecdsaAlgorithm) Sign(msg []byte, key any) ([]byte, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an EC private key, got %T", ErrInvalidKeyMaterial, a.name, key)
	}
	der, err := ecdsa.SignASN1(rand.Reader, priv, digest(a.hash, msg))
	if err != nil {
		return nil, fmt.Errorf("jose: ECDSA signing failed: %w", err)
	}
	return DERToRaw(der, priv.Curve)
}

func (a ecdsaAlgorithm) Verify(msg []byte, key any, sig []byte) bool {
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return false
	}
	// Length is checked before any cryptographic work happens.
	der, err := RawToDER(sig, pub.Curve)
	if err != nil {
		return false
	}
	return ecdsa.VerifyASN1(pub, digest(a.hash, msg), der)
}

// ecdsaSignature mirrors the two-integer ASN.1 SEQUENCE used by DER
// encoded ECDSA signatures.
type ecdsaSignature struct {
	R, S *big.Int
}

// coordinateSize returns the byte length of one curve coordinate,
// ceil(bits/8). P-521 coordinates are 66 bytes.
func coordinateSize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

// DERToRaw converts a DER encoded ECDSA signature into the fixed-width
// raw r||s form used by the JOSE EC algorithms.
func DERToRaw(der []byte, curve elliptic.Curve) ([]byte, error) {
	var sig ecdsaSignature
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil || len(rest) != 0 {
		return nil, fmt.Errorf("%w: malformed DER signature", ErrInvalidSignatureFormat)
	}
	size := coordinateSize(curve)
	if sig.R == nil || sig.S == nil || sig.R.Sign() < 0 || sig.S.Sign() < 0 ||
		sig.R.BitLen() > 8*size || sig.S.BitLen() > 8*size {
		return nil, fmt.Errorf("%w: signature integers out of range for curve", ErrInvalidSignatureFormat)
	}
	raw := make([]byte, 2*size)
	sig.R.FillBytes(raw[:size])
	sig.S.FillBytes(raw[size:])
	return raw, nil
}

// RawToDER converts a raw r||s signature into DER. A signature whose
// length is not exactly twice the coordinate size is rejected.
func RawToDER(raw []byte, curve elliptic.Curve) ([]byte, error) {
	size := coordinateSize(curve)
	if len(raw) != 2*size {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSignatureFormat, 2*size, len(raw))
	}
	r := new(big.Int).SetBytes(raw[:size])
	s := new(big.Int).SetBytes(raw[size:])
	der, err := asn1.Marshal(ecdsaSignature{R: r, S: s})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureFormat, err)
	}
	return der, nil
}

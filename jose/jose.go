package jose

import (
	"crypto"
	"errors"
	"fmt"
	"sort"

	// Link the hash implementations behind crypto.SHA256/384/512.
	_ "crypto/sha256"
	_ "crypto/sha512"
)

var (
	// ErrUnsupportedAlgorithm is returned by Lookup for unknown identifiers.
	ErrUnsupportedAlgorithm = errors.New("jose: unsupported algorithm")

	// ErrInvalidKeyMaterial is returned when raw key input cannot be
	// normalized into a usable signing or verification key.
	ErrInvalidKeyMaterial = errors.New("jose: invalid key material")

	// ErrInvalidSignatureFormat is returned when a raw EC signature does
	// not match the fixed two-coordinate layout.
	ErrInvalidSignatureFormat = errors.New("jose: invalid signature format")
)

// Algorithm is the uniform contract every registered signing scheme
// implements. Keys are prepared per operation from caller-supplied raw
// material and never cached by the engine.
//
// Sign is deterministic for HMAC and PKCS#1 v1.5 but randomized for ECDSA
// and PSS; callers must not assume determinism. Verify never returns an
// error: malformed signatures, wrong key types, and cryptographic
// mismatches all yield false.
type Algorithm interface {
	// Name returns the JOSE identifier, e.g. "HS256".
	Name() string

	// PrepareSignKey normalizes raw input (secret bytes, PEM-encoded key
	// material, or a pre-parsed key) into a private or secret key handle.
	PrepareSignKey(raw any) (any, error)

	// PrepareVerifyKey normalizes raw input into a public or secret key
	// handle. In addition to PEM and pre-parsed keys it accepts SSH
	// authorized-key lines for the asymmetric families.
	PrepareVerifyKey(raw any) (any, error)

	// Sign signs msg with a key returned by PrepareSignKey.
	Sign(msg []byte, key any) ([]byte, error)

	// Verify reports whether sig is a valid signature of msg under a key
	// returned by PrepareVerifyKey.
	Verify(msg []byte, key any, sig []byte) bool
}

// algorithms is the process-wide registry. It is built once here and
// never mutated afterwards, so concurrent reads need no synchronization.
var algorithms = map[string]Algorithm{
	"none":  noneAlgorithm{},
	"HS256": hmacAlgorithm{name: "HS256", hash: crypto.SHA256},
	"HS384": hmacAlgorithm{name: "HS384", hash: crypto.SHA384},
	"HS512": hmacAlgorithm{name: "HS512", hash: crypto.SHA512},
	"RS256": rsaAlgorithm{name: "RS256", hash: crypto.SHA256},
	"RS384": rsaAlgorithm{name: "RS384", hash: crypto.SHA384},
	"RS512": rsaAlgorithm{name: "RS512", hash: crypto.SHA512},
	"ES256": ecdsaAlgorithm{name: "ES256", hash: crypto.SHA256},
	"ES384": ecdsaAlgorithm{name: "ES384", hash: crypto.SHA384},
	"ES512": ecdsaAlgorithm{name: "ES512", hash: crypto.SHA512},
	"PS256": pssAlgorithm{name: "PS256", hash: crypto.SHA256},
	"PS384": pssAlgorithm{name: "PS384", hash: crypto.SHA384},
	"PS512": pssAlgorithm{name: "PS512", hash: crypto.SHA512},
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (Algorithm, error) {
	alg, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// Algorithms returns the sorted names of all registered algorithms.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

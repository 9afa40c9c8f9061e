// Package jose implements the JOSE (JSON Object Signing) signature
// algorithm family behind a single Algorithm contract: symmetric HMAC,
// RSA PKCS#1 v1.5, RSA-PSS, and ECDSA, plus the deliberately dead "none"
// algorithm. Algorithms are registered once into a process-wide read-only
// registry and are safe for unsynchronized concurrent use.
package jose

// Package token produces bearer tokens for successful grants. A Generator
// composes an access-token value generator, an optional refresh-token
// value generator, and a per-grant-type expiry resolver. Generators are
// injectable, so deployments can swap the default opaque random values
// for signed JWTs without touching the server lifecycle.
package token

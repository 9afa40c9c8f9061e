// Package memory provides an in-memory implementation of the storage
// interfaces.
//
// This package implements ClientStore, TokenStore, FlowStore, and
// UserAuthenticator using Go maps with mutex protection. It is suitable
// for development, testing, and single-instance deployments where
// persistence is not required.
//
// Features:
//   - Thread-safe operations using sync.RWMutex
//   - Automatic cleanup of expired codes and revoked expired tokens
//   - bcrypt validation for client secrets and user passwords
//   - Optional OpenTelemetry storage size gauges
//
// Example usage:
//
//	store := memory.New()
//	defer store.Stop()
//
//	server, _ := oauth.NewServer(cfg, store, store, store)
package memory

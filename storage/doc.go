// Package storage provides the persistence collaborator interfaces for the
// OAuth authorization server.
//
// The interfaces defined here are the server's only view of persistence:
//   - ClientStore: resolves and saves registered OAuth clients
//   - TokenStore: persists issued bearer tokens and supports revocation
//   - FlowStore: tracks single-use authorization codes
//   - UserAuthenticator: validates resource-owner credentials for the
//     password grant
//
// Implementations are provided in subpackages:
//   - storage/memory: in-memory storage for development and testing
package storage

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/giantswarm/oauth-server/instrumentation"
	"github.com/giantswarm/oauth-server/storage"
)

// Store is an in-memory implementation of all storage interfaces.
// It implements ClientStore, TokenStore, FlowStore, and UserAuthenticator.
type Store struct {
	mu sync.RWMutex

	clients map[string]*storage.Client

	// Both maps point at the same *storage.Token record so revocation
	// through either value is visible to the other.
	tokensByAccess  map[string]*storage.Token
	tokensByRefresh map[string]*storage.Token

	authCodes map[string]*storage.AuthorizationCode

	users         map[string]*storage.User // username -> user
	userPasswords map[string][]byte        // username -> bcrypt hash

	// Atomic counters for metrics (lock-free reads during collection)
	tokensCount  atomic.Int64
	clientsCount atomic.Int64
	codesCount   atomic.Int64

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	logger          *slog.Logger
}

// Compile-time interface checks
var (
	_ storage.ClientStore       = (*Store)(nil)
	_ storage.TokenStore        = (*Store)(nil)
	_ storage.FlowStore         = (*Store)(nil)
	_ storage.UserAuthenticator = (*Store)(nil)
)

// New creates a new in-memory store with the default cleanup interval
// (1 minute).
func New() *Store {
	return NewWithInterval(time.Minute)
}

// NewWithInterval creates a new in-memory store with a custom cleanup
// interval. If cleanupInterval is 0 or negative, 1 minute is used.
func NewWithInterval(cleanupInterval time.Duration) *Store {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &Store{
		clients:         make(map[string]*storage.Client),
		tokensByAccess:  make(map[string]*storage.Token),
		tokensByRefresh: make(map[string]*storage.Token),
		authCodes:       make(map[string]*storage.AuthorizationCode),
		users:           make(map[string]*storage.User),
		userPasswords:   make(map[string][]byte),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		logger:          slog.Default(),
	}

	go s.cleanupLoop()

	return s
}

// SetLogger sets a custom logger.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetInstrumentation registers storage size gauges with the given
// instrumentation instance.
func (s *Store) SetInstrumentation(inst *instrumentation.Instrumentation) error {
	return inst.RegisterStorageSizeCallbacks(
		func() int64 { return s.tokensCount.Load() },
		func() int64 { return s.clientsCount.Load() },
		func() int64 { return s.codesCount.Load() },
	)
}

// Stop terminates the background cleanup goroutine.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

// ==================== ClientStore ====================

// SaveClient saves a registered client.
func (s *Store) SaveClient(_ context.Context, client *storage.Client) error {
	if client == nil || client.ClientID == "" {
		return fmt.Errorf("memory: client ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ClientID]; !exists {
		s.clientsCount.Add(1)
	}
	s.clients[client.ClientID] = client
	return nil
}

// GetClient retrieves a client by ID.
func (s *Store) GetClient(_ context.Context, clientID string) (*storage.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[clientID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return client, nil
}

// ValidateClientSecret checks a client secret against the stored bcrypt
// hash. bcrypt comparison does not leak timing about the stored hash.
func (s *Store) ValidateClientSecret(_ context.Context, clientID, clientSecret string) error {
	s.mu.RLock()
	client, ok := s.clients[clientID]
	s.mu.RUnlock()

	if !ok {
		return storage.ErrNotFound
	}
	if client.ClientSecretHash == "" {
		if clientSecret == "" {
			return nil
		}
		return fmt.Errorf("memory: public client has no secret")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.ClientSecretHash), []byte(clientSecret)); err != nil {
		return fmt.Errorf("memory: client secret mismatch")
	}
	return nil
}

// ==================== TokenStore ====================

// SaveToken persists a token record, indexed by access and (if present)
// refresh token values.
func (s *Store) SaveToken(_ context.Context, token *storage.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("memory: access token value is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokensByAccess[token.AccessToken]; !exists {
		s.tokensCount.Add(1)
	}
	s.tokensByAccess[token.AccessToken] = token
	if token.RefreshToken != "" {
		s.tokensByRefresh[token.RefreshToken] = token
	}
	return nil
}

// GetByAccessToken retrieves a token record by access token value.
func (s *Store) GetByAccessToken(_ context.Context, accessToken string) (*storage.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokensByAccess[accessToken]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return token, nil
}

// GetByRefreshToken retrieves a token record by refresh token value.
func (s *Store) GetByRefreshToken(_ context.Context, refreshToken string) (*storage.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokensByRefresh[refreshToken]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return token, nil
}

// RevokeToken marks a token revoked. Idempotent: revoking an already
// revoked token succeeds and keeps the original revocation time.
func (s *Store) RevokeToken(_ context.Context, token *storage.Token) error {
	if token == nil {
		return fmt.Errorf("memory: token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tokensByAccess[token.AccessToken]
	if !ok {
		return nil
	}
	if !stored.Revoked {
		stored.Revoked = true
		stored.RevokedAt = time.Now()
	}
	return nil
}

// ==================== FlowStore ====================

// SaveAuthorizationCode saves an issued authorization code.
func (s *Store) SaveAuthorizationCode(_ context.Context, code *storage.AuthorizationCode) error {
	if code == nil || code.Code == "" {
		return fmt.Errorf("memory: authorization code value is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.authCodes[code.Code]; !exists {
		s.codesCount.Add(1)
	}
	s.authCodes[code.Code] = code
	return nil
}

// AtomicCheckAndMarkCodeUsed loads a code and marks it used under one
// lock acquisition, so two concurrent exchanges cannot both succeed.
func (s *Store) AtomicCheckAndMarkCodeUsed(_ context.Context, code string) (*storage.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.authCodes[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, storage.ErrCodeExpired
	}
	if record.Used {
		return nil, storage.ErrCodeAlreadyUsed
	}
	record.Used = true
	return record, nil
}

// DeleteAuthorizationCode removes an authorization code.
func (s *Store) DeleteAuthorizationCode(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.authCodes[code]; exists {
		delete(s.authCodes, code)
		s.codesCount.Add(-1)
	}
	return nil
}

// ==================== UserAuthenticator ====================

// AddUser registers a user with a bcrypt-hashed password. Intended for
// development and tests.
func (s *Store) AddUser(user *storage.User, password string) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("memory: username is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("memory: failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.Username] = user
	s.userPasswords[user.Username] = hash
	return nil
}

// Authenticate validates resource-owner credentials.
func (s *Store) Authenticate(_ context.Context, username, password string) (*storage.User, error) {
	s.mu.RLock()
	user, ok := s.users[username]
	hash := s.userPasswords[username]
	s.mu.RUnlock()

	if !ok {
		return nil, storage.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, fmt.Errorf("memory: password mismatch")
	}
	return user, nil
}

// ==================== Cleanup ====================

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes expired authorization codes and expired revoked tokens.
// Revoked tokens that have not yet expired are kept so revocation status
// remains observable.
func (s *Store) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removedCodes := 0
	for code, record := range s.authCodes {
		if now.After(record.ExpiresAt) {
			delete(s.authCodes, code)
			s.codesCount.Add(-1)
			removedCodes++
		}
	}

	removedTokens := 0
	for access, token := range s.tokensByAccess {
		if token.Revoked && token.Expired(now) {
			delete(s.tokensByAccess, access)
			if token.RefreshToken != "" {
				delete(s.tokensByRefresh, token.RefreshToken)
			}
			s.tokensCount.Add(-1)
			removedTokens++
		}
	}

	if removedCodes > 0 || removedTokens > 0 {
		s.logger.Debug("Storage cleanup completed",
			"expired_codes", removedCodes,
			"expired_tokens", removedTokens)
	}
}

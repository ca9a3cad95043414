// Package keyring stores application secrets in the system keyring.
// When the keyring service is unavailable values are kept in memory for
// the rest of the session.
package keyring

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/yllada/leaf-vpn/common"
	"github.com/zalando/go-keyring"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "leaf-vpn"
	// clientIDKey holds the identifier sent with subscription updates.
	clientIDKey = "subscription-client-id"
)

// Common errors returned by keyring operations.
var (
	ErrNotFound    = common.ErrCredentialsNotFound
	ErrEmptyKey    = errors.New("key cannot be empty")
	ErrUnavailable = errors.New("keyring service unavailable")
)

// Store reads and writes secrets under one keyring service.
type Store struct {
	service string

	mu       sync.RWMutex
	fallback map[string]string
}

// New creates a store for the application's keyring service.
func New() *Store {
	return &Store{
		service:  serviceName,
		fallback: make(map[string]string),
	}
}

// Set saves value under key. If the system keyring rejects the write the
// value is kept in memory and ErrUnavailable is returned.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := keyring.Set(s.service, key, value); err != nil {
		common.LogWarn("System keyring unavailable, keeping %q in memory: %v", key, err)
		s.mu.Lock()
		s.fallback[key] = value
		s.mu.Unlock()
		return common.WrapError(ErrUnavailable, err.Error())
	}

	s.mu.Lock()
	delete(s.fallback, key)
	s.mu.Unlock()
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	value, err := keyring.Get(s.service, key)
	if err == nil {
		return value, nil
	}

	s.mu.RLock()
	value, ok := s.fallback[key]
	s.mu.RUnlock()
	if ok {
		return value, nil
	}

	if !errors.Is(err, keyring.ErrNotFound) {
		common.LogDebug("Keyring lookup for %q failed: %v", key, err)
	}
	return "", ErrNotFound
}

// Delete removes key from the keyring and the in-memory fallback.
func (s *Store) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	delete(s.fallback, key)
	s.mu.Unlock()

	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	return nil
}

// ClientID returns the subscription client identifier, generating and
// storing a new one on first use.
func (s *Store) ClientID() (string, error) {
	id, err := s.Get(clientIDKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	id = uuid.NewString()
	if err := s.Set(clientIDKey, id); err != nil && !errors.Is(err, ErrUnavailable) {
		return "", err
	}
	common.LogInfo("Generated subscription client ID")
	return id, nil
}

// Package secrets stores the OpenAI API key in the operating system's
// credential store: Keychain on macOS, Credential Manager on Windows, the
// Secret Service on Linux, and an encrypted file everywhere else.
package secrets

import "runtime"

// APIKeyName is the single secret the shell manages.
const APIKeyName = "OPENAI_API_KEY"

// Backend is the platform-specific storage implementation.
type Backend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	Exists(key string) (bool, error)
}

// Store wraps the detected backend.
type Store struct {
	backend Backend
}

// NewStore creates a store over the platform's credential backend. If the
// platform backend is unavailable the encrypted-file fallback is used.
func NewStore() (*Store, error) {
	backend, err := detectBackend()
	if err != nil {
		backend = NewFallbackBackend()
	}
	return &Store{backend: backend}, nil
}

// NewStoreWithBackend creates a store over an explicit backend (tests).
func NewStoreWithBackend(backend Backend) *Store {
	return &Store{backend: backend}
}

// detectBackend chooses the appropriate backend for the platform.
func detectBackend() (Backend, error) {
	switch runtime.GOOS {
	case "darwin":
		return NewKeychainBackend()
	case "windows":
		return NewCredentialBackend()
	case "linux":
		return NewSecretServiceBackend()
	default:
		return NewFallbackBackend(), nil
	}
}

// SetAPIKey stores the API key.
func (s *Store) SetAPIKey(value string) error {
	return s.backend.Set(APIKeyName, value)
}

// APIKey retrieves the stored API key. ErrSecretNotFound when absent.
func (s *Store) APIKey() (string, error) {
	return s.backend.Get(APIKeyName)
}

// ClearAPIKey removes the stored API key.
func (s *Store) ClearAPIKey() error {
	return s.backend.Delete(APIKeyName)
}

// HasAPIKey reports whether a key is stored.
func (s *Store) HasAPIKey() (bool, error) {
	return s.backend.Exists(APIKeyName)
}

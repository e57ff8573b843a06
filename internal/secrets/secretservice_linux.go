//go:build linux

package secrets

import (
	"github.com/zalando/go-keyring"
)

// SecretServiceBackend stores secrets in the Linux Secret Service
// (GNOME Keyring, KWallet).
type SecretServiceBackend struct {
	service string
}

// NewSecretServiceBackend creates a Linux Secret Service backend.
func NewSecretServiceBackend() (Backend, error) {
	return &SecretServiceBackend{service: "aish"}, nil
}

// Set stores a secret in the secret service.
func (s *SecretServiceBackend) Set(key, value string) error {
	return keyring.Set(s.service, key, value)
}

// Get retrieves a secret from the secret service.
func (s *SecretServiceBackend) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return value, nil
}

// Delete removes a secret from the secret service.
func (s *SecretServiceBackend) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

// Exists checks whether a secret is present.
func (s *SecretServiceBackend) Exists(key string) (bool, error) {
	_, err := keyring.Get(s.service, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

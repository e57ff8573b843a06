//go:build windows

package secrets

import (
	"github.com/danieljoos/wincred"
)

// CredentialBackend stores secrets in the Windows Credential Manager.
type CredentialBackend struct {
	prefix string
}

// NewCredentialBackend creates a Windows Credential Manager backend.
func NewCredentialBackend() (Backend, error) {
	return &CredentialBackend{prefix: "aish:"}, nil
}

// Set stores a secret in the Credential Manager.
func (c *CredentialBackend) Set(key, value string) error {
	cred := wincred.NewGenericCredential(c.prefix + key)
	cred.CredentialBlob = []byte(value)
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

// Get retrieves a secret from the Credential Manager.
func (c *CredentialBackend) Get(key string) (string, error) {
	cred, err := wincred.GetGenericCredential(c.prefix + key)
	if err != nil {
		if err == wincred.ErrElementNotFound {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return string(cred.CredentialBlob), nil
}

// Delete removes a secret from the Credential Manager.
func (c *CredentialBackend) Delete(key string) error {
	cred, err := wincred.GetGenericCredential(c.prefix + key)
	if err != nil {
		if err == wincred.ErrElementNotFound {
			return nil
		}
		return err
	}
	return cred.Delete()
}

// Exists checks whether a secret is present.
func (c *CredentialBackend) Exists(key string) (bool, error) {
	_, err := wincred.GetGenericCredential(c.prefix + key)
	if err != nil {
		if err == wincred.ErrElementNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

package secrets

import "errors"

var (
	ErrSecretNotFound  = errors.New("secret not found")
	ErrBackendNotAvail = errors.New("secrets backend not available")
)

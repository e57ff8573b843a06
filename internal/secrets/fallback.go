package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	saltSize         = 32
	keySize          = 32 // AES-256
)

// FallbackBackend keeps secrets in an encrypted file under ~/.aish for
// platforms without a usable credential service.
type FallbackBackend struct {
	filepath string
	passkey  []byte
	secrets  map[string]string
	mu       sync.RWMutex
}

type envelope struct {
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// NewFallbackBackend creates a fallback backend at the default path.
func NewFallbackBackend() Backend {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	dir := filepath.Join(homeDir, ".aish")
	_ = os.MkdirAll(dir, 0o700)
	return NewFallbackBackendWithPath(filepath.Join(dir, "secrets.enc"))
}

// NewFallbackBackendWithPath creates a fallback backend at a custom path.
func NewFallbackBackendWithPath(storagePath string) Backend {
	_ = os.MkdirAll(filepath.Dir(storagePath), 0o700)

	backend := &FallbackBackend{
		filepath: storagePath,
		passkey:  derivePasskey(),
		secrets:  make(map[string]string),
	}
	_ = backend.load()
	return backend
}

// derivePasskey builds the encryption passphrase from stable machine
// identity. This guards the file against casual copying, not against an
// attacker with local code execution.
func derivePasskey() []byte {
	host, _ := os.Hostname()
	name := ""
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return []byte("aish:" + host + ":" + name)
}

// Set stores a secret value.
func (f *FallbackBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[key] = value
	return f.save()
}

// Get retrieves a secret value.
func (f *FallbackBackend) Get(key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.secrets[key]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Delete removes a secret.
func (f *FallbackBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.secrets, key)
	return f.save()
}

// Exists checks whether a secret is present.
func (f *FallbackBackend) Exists(key string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.secrets[key]
	return ok, nil
}

// save encrypts the table and writes it to disk.
func (f *FallbackBackend) save() error {
	data, err := json.Marshal(f.secrets)
	if err != nil {
		return err
	}
	encrypted, err := f.encrypt(data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.filepath, encrypted, 0o600)
}

// load reads and decrypts the table from disk.
func (f *FallbackBackend) load() error {
	data, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	decrypted, err := f.decrypt(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(decrypted, &f.secrets)
}

// encrypt seals data with AES-256-GCM under a PBKDF2-derived key.
func (f *FallbackBackend) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := pbkdf2.Key(f.passkey, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Salt:   salt,
		Nonce:  nonce,
		Cipher: gcm.Seal(nil, nonce, plaintext, nil),
	})
}

// decrypt opens data sealed by encrypt.
func (f *FallbackBackend) decrypt(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	key := pbkdf2.Key(f.passkey, env.Salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, errors.New("corrupted secrets file")
	}
	return gcm.Open(nil, env.Nonce, env.Cipher, nil)
}

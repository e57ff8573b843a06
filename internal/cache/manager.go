// Package cache stores LLM generations in a SoloDB blob store so repeated
// in-pipeline invocations of the same prompt over the same input are served
// locally instead of re-billed.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	solodb "github.com/phillarmonic/SoloDB"
)

// DefaultTTL is how long a cached generation stays valid when the config
// does not say otherwise.
const DefaultTTL = 24 * time.Hour

// Manager wraps the cache database. A disabled manager answers every Get
// with a miss and swallows every Set.
type Manager struct {
	db       *solodb.DB
	ttl      time.Duration
	disabled bool
}

// Stats reports cache usage.
type Stats struct {
	Keys        int
	FileBytes   int64
	LiveRecords int64
}

// NewManager opens (or creates) the cache database under ~/.aish.
func NewManager(ttl time.Duration, disabled bool) (*Manager, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if disabled {
		return &Manager{disabled: true, ttl: ttl}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	aishDir := filepath.Join(homeDir, ".aish")
	if err := os.MkdirAll(aishDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create .aish directory: %w", err)
	}

	db, err := solodb.Open(solodb.Options{
		Path:       filepath.Join(aishDir, "cache.solo"),
		Durability: solodb.SyncBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	return &Manager{db: db, ttl: ttl}, nil
}

// Key derives the cache key for one generation from the model and the full
// prompt sent to it.
func Key(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return "gen:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Get retrieves a cached generation. The second result is false on a miss
// or an expired entry.
func (m *Manager) Get(key string) ([]byte, bool, error) {
	if m.disabled {
		return nil, false, nil
	}

	rc, _, _, err := m.db.GetBlob(key)
	if err == solodb.ErrNotFound || err == solodb.ErrExpired {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read error: %w", err)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("cache read error: %w", err)
	}
	return content, true, nil
}

// Set stores a generation under the manager's TTL.
func (m *Manager) Set(key string, content []byte) error {
	if m.disabled {
		return nil
	}
	reader := bytes.NewReader(content)
	if err := m.db.SetBlob(key, reader, int64(len(content)), time.Now().Add(m.ttl)); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (m *Manager) Delete(key string) error {
	if m.disabled {
		return nil
	}
	return m.db.Delete(key)
}

// Stats returns cache statistics.
func (m *Manager) Stats() Stats {
	if m.disabled || m.db == nil {
		return Stats{}
	}
	dbStats := m.db.Stats()
	return Stats{
		Keys:        dbStats.Keys,
		FileBytes:   dbStats.FileBytes,
		LiveRecords: int64(dbStats.LiveRecords),
	}
}

// Compact reclaims disk space from expired entries.
func (m *Manager) Compact() error {
	if m.disabled || m.db == nil {
		return nil
	}
	return m.db.Compact()
}

// Close closes the cache database.
func (m *Manager) Close() error {
	if m.disabled || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session aggregates visitor interaction signals into an
// inferred or confirmed persona and resolves content variants at
// render time. Session state lives in the visitor's browser context;
// the server never needs it to render a page.
// See docs/ARCHITECTURE § Persona Resolution.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Store is the small key-value surface session state persists through.
// Implementations give the resolver a host-portable stand-in for
// browser local storage.
type Store interface {
	// Get returns the stored value. The second return is false when the
	// key is absent or its TTL has lapsed.
	Get(key string) ([]byte, bool, error)

	// Set stores the value with a time-to-live.
	Set(key string, value []byte, ttl time.Duration) error

	// Clear removes the key.
	Clear(key string) error
}

// memoryEntry pairs a value with its expiry.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-memory Store for tests and embedded use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// fileEntry is the on-disk wrapper carrying the expiry alongside the
// payload.
type fileEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// FileStore is a directory-backed Store, one JSON file per key.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a store writing under dir, creating it if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session store directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// path maps a key to its file, flattening separators so keys cannot
// escape the store directory.
func (f *FileStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(f.dir, safe+".json")
}

// Get implements Store.
func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading session key %s: %w", key, err)
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("parsing session key %s: %w", key, err)
	}
	if f.now().After(entry.ExpiresAt) {
		os.Remove(f.path(key))
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set implements Store.
func (f *FileStore) Set(key string, value []byte, ttl time.Duration) error {
	entry := fileEntry{ExpiresAt: f.now().Add(ttl), Value: value}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling session key %s: %w", key, err)
	}
	if err := os.WriteFile(f.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing session key %s: %w", key, err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing session key %s: %w", key, err)
	}
	return nil
}

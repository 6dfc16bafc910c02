package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/scipunch/newsdesk/feed"
)

// Memory is an in-memory Store used in tests and as a cache for
// environments without a writable disk. Entries are kept as encoded
// strings so decode failures behave exactly like the sqlite store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(key string) (feed.CachePayload, bool, error) {
	m.mu.Lock()
	raw, ok := m.entries[key]
	m.mu.Unlock()

	var payload feed.CachePayload
	if !ok {
		return payload, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return payload, true, nil
}

func (m *Memory) Set(key string, payload feed.CachePayload) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}
	m.mu.Lock()
	m.entries[key] = string(blob)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// SetRaw stores an arbitrary string under key, bypassing encoding.
// Tests use it to plant corrupt entries.
func (m *Memory) SetRaw(key, raw string) {
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

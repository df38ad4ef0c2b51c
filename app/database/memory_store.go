package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

// MemoryStore is a process-local store. Nothing survives a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	timestamps map[string]time.Time
	pinned     map[string]feed.PinnedEntry
	snapshot   []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		timestamps: make(map[string]time.Time),
		pinned:     make(map[string]feed.PinnedEntry),
	}
}

func (m *MemoryStore) Timestamp(_ context.Context, slug string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.timestamps[slug]
	return ts, ok, nil
}

func (m *MemoryStore) SaveTimestamp(_ context.Context, slug string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.timestamps[slug]; !exists {
		m.timestamps[slug] = ts
	}
	return nil
}

func (m *MemoryStore) Pinned(_ context.Context, slug string) (feed.PinnedEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.pinned[slug]
	return entry, ok, nil
}

func (m *MemoryStore) SavePinned(_ context.Context, slug string, entry feed.PinnedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[slug] = entry
	return nil
}

// LoadSnapshot decodes a fresh copy so callers may modify the result.
func (m *MemoryStore) LoadSnapshot(_ context.Context) (*feed.State, error) {
	m.mu.RLock()
	data := m.snapshot
	m.mu.RUnlock()

	if data == nil {
		return nil, feed.ErrNoSnapshot
	}

	var state feed.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &state, nil
}

func (m *MemoryStore) SaveSnapshot(_ context.Context, state *feed.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = data
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

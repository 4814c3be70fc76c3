// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt int64
}

// MemoryStore is an in-process KeyValueStore.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{items: make(map[string]entry), now: time.Now}
}

// Get returns the value under key. Expired slots report ok=false.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if e.expiresAt != 0 && m.now().UnixMilli() >= e.expiresAt {
		delete(m.items, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key for ttl (0 = no expiry).
func (m *MemoryStore) Set(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{value: value, expiresAt: expiry(m.now(), ttl)}
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

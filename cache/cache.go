// Package cache provides the TTL cache used by the data providers.
// Every provider takes a Store so callers can swap the in-memory
// implementation for a shared one, or disable caching entirely with a
// nil store.
package cache

import (
	"sync"
	"time"
)

// Store is a TTL key/value cache. Get reports a miss for absent or
// expired entries.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Memory is an in-memory Store with background expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewMemory creates a Memory store and starts its cleanup goroutine.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}

	// Start background cleanup
	go m.cleanup()

	return m
}

// Close stops the background cleanup goroutine.
func (m *Memory) Close() {
	close(m.done)
}

// Get returns the value for key if present and unexpired.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Non-positive ttl is a no-op.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()
}

// Invalidate removes a specific key from the cache.
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Clear removes all entries from the cache.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// cleanup periodically removes expired entries.
func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for key, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}
